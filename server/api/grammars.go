package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dekarrin/clrviz/server/result"
	"github.com/dekarrin/clrviz/server/serr"
)

// HTTPCreateGrammar returns a HandlerFunc that builds a grammar and stores it
// along with its tables. If the same grammar was already stored under the same
// conflict policy, the stored one is given instead.
func (api API) HTTPCreateGrammar() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epCreateGrammar)
}

func (api API) epCreateGrammar(req *http.Request) result.Result {
	var createData GrammarRequest
	err := parseJSON(req, &createData)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	if strings.TrimSpace(createData.Grammar) == "" {
		return result.BadRequest("grammar: property is empty or missing from request", "empty grammar")
	}

	policy, err := api.policyFor(createData.Policy)
	if err != nil {
		return result.BadRequest("policy: "+err.Error(), "bad policy: %s", err.Error())
	}

	g, tables, err := api.Backend.BuildGrammar(req.Context(), createData.Grammar, policy)
	if err != nil {
		return grammarErrResult(err)
	}

	resp := grammarModel(g)
	tm := tablesModel(tables)
	resp.Tables = &tm

	return result.Created(resp, "grammar %s stored with %d states", g.ID, g.States).
		WithHeader("Location", resp.URI)
}

// HTTPGetAllGrammars returns a HandlerFunc that lists every stored grammar
// without its tables.
func (api API) HTTPGetAllGrammars() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epGetAllGrammars)
}

func (api API) epGetAllGrammars(req *http.Request) result.Result {
	all, err := api.Backend.GetAllGrammars(req.Context())
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	resp := make([]GrammarModel, len(all))
	for i := range all {
		resp[i] = grammarModel(all[i])
	}

	return result.OK(resp, "got all %d grammars", len(resp))
}

// HTTPGetGrammar returns a HandlerFunc that gets a stored grammar along with
// its tables. If the query parameter "format" is "text", the grammar is given
// as plain text tables instead of JSON.
func (api API) HTTPGetGrammar() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epGetGrammar)
}

func (api API) epGetGrammar(req *http.Request) result.Result {
	id := requireIDParam(req)

	g, tables, err := api.Backend.GetGrammar(req.Context(), id.String())
	if err != nil {
		return grammarErrResult(err)
	}

	switch strings.ToLower(req.URL.Query().Get("format")) {
	case "text":
		var sb strings.Builder
		sb.WriteString(tables.ProductionsString())
		sb.WriteString("\n\n")
		sb.WriteString(tables.String())
		sb.WriteString("\n\nConflicts:\n")
		sb.WriteString(tables.ConflictsString())
		sb.WriteString("\n\n")
		sb.WriteString(tables.StatesString())
		sb.WriteString("\n")
		return result.Text(sb.String(), "got grammar %s as text", g.ID)
	case "", "json":
		resp := grammarModel(g)
		tm := tablesModel(tables)
		resp.Tables = &tm
		return result.OK(resp, "got grammar %s", g.ID)
	default:
		return result.BadRequest("format: must be one of 'json' or 'text'", "unknown format %q", req.URL.Query().Get("format"))
	}
}

// HTTPGetGrammarDOT returns a HandlerFunc that gives the LR(1) automaton of a
// stored grammar in Graphviz DOT format.
func (api API) HTTPGetGrammarDOT() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epGetGrammarDOT)
}

func (api API) epGetGrammarDOT(req *http.Request) result.Result {
	id := requireIDParam(req)

	g, tables, err := api.Backend.GetGrammar(req.Context(), id.String())
	if err != nil {
		return grammarErrResult(err)
	}

	return result.Text(tables.Automaton().DOT(), "got DOT of grammar %s", g.ID).
		WithHeader("Content-Type", "text/vnd.graphviz; charset=utf-8")
}

// HTTPCreateTrace returns a HandlerFunc that parses input with the tables of
// a stored grammar and gives the trace of every step. A rejected input is
// still a successful request; the trace ends in the error step.
func (api API) HTTPCreateTrace() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epCreateTrace)
}

func (api API) epCreateTrace(req *http.Request) result.Result {
	id := requireIDParam(req)

	var traceData TraceRequest
	err := parseJSON(req, &traceData)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	g, trace, err := api.Backend.ParseWith(req.Context(), id.String(), strings.Fields(traceData.Input))
	if err != nil {
		return grammarErrResult(err)
	}

	resp := TraceResponse{
		Grammar: grammarModel(g).URI,
		Trace:   traceModel(trace),
	}
	return result.OK(resp, "parsed input with grammar %s (accepted=%t)", g.ID, trace.Accepted)
}

// HTTPDeleteGrammar returns a HandlerFunc that deletes a stored grammar.
//
// The handler must be behind middleware that refuses clients not logged in as
// admin.
func (api API) HTTPDeleteGrammar() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epDeleteGrammar)
}

func (api API) epDeleteGrammar(req *http.Request) result.Result {
	id := requireIDParam(req)

	g, err := api.Backend.DeleteGrammar(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError("could not delete grammar: " + err.Error())
	}

	return result.OK(grammarModel(g), "admin deleted grammar %s", g.ID)
}
