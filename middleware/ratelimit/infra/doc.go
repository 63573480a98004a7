// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - RedisCounterStore: contador por janela em Redis (INCR + EXPIRE em MULTI/EXEC)
//   - MemoryCounterStore: mesmo contrato em memória, para um único processo e testes
//   - ClientBuckets: token bucket por cliente usando golang.org/x/time/rate
//   - ChanPool: semáforo simples para limite de forwards simultâneos
//   - RedisStatsStore, MemoryStatsStore, PrometheusStats: estatísticas de admissão
package infra
