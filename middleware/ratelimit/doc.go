// Package ratelimit fornece os adapters HTTP (net/http) do gateway de proxy com
// controle de admissão por host de destino.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (admissão por host, parser de redirects, vagas de forward)
//   - infra: implementações concretas (Redis, memória, token bucket, semáforo, métricas)
//   - ratelimit (este pacote): handler /proxy, Forwarder, middlewares e router
//
// Fluxo de GET /proxy?url=<alvo>&r=<redirects>:
//
//  1. Valida url e r (400 em caso de erro)
//  2. Chama a camada application para decidir a admissão do host do alvo
//  3. Se negado, responde 429 com {error, retryable, delay}; se o store falhou, 503
//  4. Se permitido, repassa para o Forwarder respeitando a política de redirects
//
// Variáveis de ambiente do binário gateway (cmd/gateway) controlam o comportamento,
// como RATE_TOKENS_PER_INTERVAL, RATE_INTERVAL_SECONDS, REDIS_ADDR e PROXY_TIMEOUT.
package ratelimit
