package cli

import (
	"fmt"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/stockmcp/mcp/localtransport"
	"github.com/effective-security/stockmcp/server"
	"github.com/effective-security/stockmcp/tools"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

func (a *app) newCallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "call TOOL [ARGS_JSON]",
		Short: "Call a tool through the MCP protocol and print the result",
		Long: `Run one tools/call request against an in-process server.
Example: stockmcp call get-stock-data '{"symbol":"IBM"}'`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			arguments := "{}"
			if len(args) > 1 {
				arguments = args[1]
			}
			if !gjson.Valid(arguments) || !gjson.Parse(arguments).IsObject() {
				return errors.Newf("arguments must be a JSON object: %s", arguments)
			}

			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			list, err := a.tools(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if !hasTool(list, args[0]) {
				return errors.Newf("tool call failed: unknown tool: %s", args[0])
			}

			tr := localtransport.New()
			srv, err := server.New(tr, list...)
			if err != nil {
				return err
			}
			if err = srv.Start(); err != nil {
				return err
			}
			defer srv.Close()

			req, err := callRequest(args[0], arguments)
			if err != nil {
				return err
			}
			res, err := tr.HandleMessage(cmd.Context(), req)
			if err != nil {
				return err
			}

			if e := gjson.GetBytes(res, "error"); e.Exists() {
				return errors.Newf("tool call failed: %s", e.Get("message").String())
			}
			result := gjson.GetBytes(res, "result")
			if !result.IsObject() {
				return errors.Newf("tool call failed: no result from %s", args[0])
			}
			out := cmd.OutOrStdout()
			for _, c := range result.Get("content").Array() {
				fmt.Fprint(out, c.Get("text").String())
			}
			return nil
		},
	}
}

func callRequest(name, arguments string) ([]byte, error) {
	req := []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/call"}`)
	req, err := sjson.SetBytes(req, "params.name", name)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	req, err = sjson.SetRawBytes(req, "params.arguments", []byte(arguments))
	return req, errors.WithStack(err)
}

func hasTool(list []tools.IMCPTool, name string) bool {
	return slices.ContainsFunc(list, func(t tools.IMCPTool) bool {
		return t.Name() == name
	})
}
