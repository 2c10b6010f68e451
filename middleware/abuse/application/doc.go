// Package application contém os casos de uso (regras de aplicação) do motor
// de abuso e da revogação de credenciais.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Engine.Evaluate(actor, action, tier) retorna uma Decision
// (allow/deny + retry-after + exigência de verificação humana).
package application
