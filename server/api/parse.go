package api

import (
	"net/http"
	"strings"

	"github.com/dekarrin/clrviz/internal/parse"
	"github.com/dekarrin/clrviz/server/result"
)

// HTTPParse returns a HandlerFunc that builds the tables for a grammar given
// in the request and, if the request also has input, parses it with them.
// Nothing is stored.
func (api API) HTTPParse() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epParse)
}

func (api API) epParse(req *http.Request) result.Result {
	var parseData ParseRequest
	err := parseJSON(req, &parseData)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	if strings.TrimSpace(parseData.Grammar) == "" {
		return result.BadRequest("grammar: property is empty or missing from request", "empty grammar")
	}

	policy, err := api.policyFor(parseData.Policy)
	if err != nil {
		return result.BadRequest("policy: "+err.Error(), "bad policy: %s", err.Error())
	}

	tables, err := api.Backend.CompileGrammar(req.Context(), parseData.Grammar, policy)
	if err != nil {
		return grammarErrResult(err)
	}

	resp := ParseResponse{Tables: tablesModel(tables)}
	if parseData.Input == nil {
		return result.OK(resp, "built %d states with %d conflict(s)", tables.NumStates(), len(tables.Conflicts()))
	}

	trace, err := parse.Parse(tables, strings.Fields(*parseData.Input))
	if err != nil {
		return result.InternalServerError(err.Error())
	}
	tm := traceModel(trace)
	resp.Trace = &tm

	return result.OK(resp, "built %d states and parsed input (accepted=%t)", tables.NumStates(), trace.Accepted)
}
