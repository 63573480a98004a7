// Package domain define contratos e tipos de domínio para o controle de admissão
// por host de destino, a política de redirects e o limite de concorrência.
//
// Este pacote não depende de net/http nem de implementações concretas.
// A intenção é permitir testes de unidade puros e desacoplar regras de negócio
// de detalhes de infraestrutura (Redis, memória, etc.).
package domain
