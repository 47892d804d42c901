package main

import (
	"encoding/json"
	"fmt"

	"github.com/mcdev12/liveworkshop/go/internal/live/render"
	"github.com/mcdev12/liveworkshop/go/internal/models"
	"github.com/spf13/cobra"
)

func writeState(cmd *cobra.Command, o *options, state *models.LiveState) error {
	if o.jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(state)
	}

	view := render.Build(*state, o.clock.Now())
	_, err := fmt.Fprintln(cmd.OutOrStdout(), render.Terminal(view, o.width))
	return err
}
