// Package application contém os casos de uso do gateway: a decisão de admissão
// por host, a normalização do parâmetro de redirects e a aquisição de vagas
// para forwards simultâneos.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Admission.CheckAdmission(ctx, host) retorna uma Decision (allow/deny + delay).
package application
