// Package infra contém implementações concretas (infraestrutura) para os
// contratos definidos no pacote domain.
//
// Exemplos:
//   - Cache: store genérico com TTL e expiração preguiçosa
//   - WindowLimiter: janela fixa por (ator, ação) sobre o cache
//   - PatternDetector: regras de detecção descritas como dado
//   - BlockRegistry / RevocationRegistry: conjuntos mutáveis com lock
package infra
