package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sandrolain/jsonata/pkg/evaluator"
	"github.com/sandrolain/jsonata/pkg/types"
)

func newBatchCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "evaluate a stream of requests read from standard input",
		Long: `batch reads a stream of JSON requests from standard input, usually
one per line, and writes one JSON response per line to standard output.

	request:  {"query": "<expression>", "data": <any>, "bindings": {"name": <any>}}
	response: {"result": <any>}
	          {"error": "<message>", "code": "<error code>"}

"data" and "bindings" are optional. A request whose result is undefined
gets an empty response object. Compiled expressions are cached, so
repeating a query across requests only compiles it once.
`,
		Args: cobra.NoArgs,
		RunE: mkRunE(c, runBatch),
	}
	return cmd
}

type batchResponse struct {
	Result interface{}     `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
	Code   types.ErrorCode `json:"code,omitempty"`
}

func runBatch(cmd *Command, args []string) error {
	ev, err := cmd.newEvaluator(evaluator.WithCaching(true))
	if err != nil {
		return err
	}
	dec := json.NewDecoder(cmd.InOrStdin())
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)

	for n := 1; ; n++ {
		req, err := types.DecodeJSONStream(dec)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("request %d: %w", n, err)
		}
		resp := evalRequest(cmd, ev, req)
		if err := enc.Encode(resp); err != nil {
			return err
		}
	}
}

func evalRequest(cmd *Command, ev *evaluator.Evaluator, req interface{}) batchResponse {
	obj, ok := req.(*types.OrderedObject)
	if !ok {
		return batchResponse{Error: "request must be an object"}
	}
	query, _ := obj.Get("query")
	src, ok := query.(string)
	if !ok {
		return batchResponse{Error: `request has no "query" string`}
	}
	data, _ := obj.Get("data")

	var bindings map[string]interface{}
	if b, ok := obj.Get("bindings"); ok {
		bobj, ok := b.(*types.OrderedObject)
		if !ok {
			return batchResponse{Error: `"bindings" must be an object`}
		}
		bindings = make(map[string]interface{}, bobj.Len())
		for _, k := range bobj.Keys {
			bindings[k] = bobj.Values[k]
		}
	}

	expr, err := ev.Compile(src)
	if err != nil {
		return errorResponse(err)
	}
	result, err := ev.EvalWithBindings(cmd.Context(), expr, data, bindings)
	if err != nil {
		cmd.Logger().Debug("request failed", "query", src, "error", err)
		return errorResponse(err)
	}
	return batchResponse{Result: outputValue(result)}
}

func errorResponse(err error) batchResponse {
	resp := batchResponse{Error: err.Error()}
	var e *types.Error
	if errors.As(err, &e) {
		resp.Code = e.Code
	}
	return resp
}
