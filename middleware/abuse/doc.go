// Package abuse fornece adapters HTTP (net/http) para o motor de mitigação
// de abuso e revogação de credenciais.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (Evaluate, IsCredentialValid, desafio humano) sem net/http
//   - infra: implementações concretas (cache TTL, janela fixa, tracker,
//     detector, registros de bloqueio e revogação), detalhes de infraestrutura
//   - abuse (este pacote): middlewares HTTP + wiring/extração de chave +
//     tradução para status/headers + superfície administrativa
//
// Fluxo no gateway:
//
//  1. Extrai a chave do ator (IP/header/XFF) e classifica a ação
//  2. Checa a credencial contra o registro de revogação (blacklist + marcador)
//  3. Chama a camada application para obter a decisão do motor
//  4. Se negado, responde 429 (rate/bloqueio) com Retry-After e, quando a
//     escalada pede, o header de desafio humano
//  5. Se permitido, chama o próximo handler (ex: reverse proxy)
//
// Variáveis de ambiente do binário gateway (cmd/gateway) controlam o
// comportamento, como RATE_WINDOW, RATE_LIMIT, CHALLENGE_AFTER e ADMIN_ADDR.
package abuse
