package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuitables/internal/model"
	"github.com/verte-zerg/tuitables/internal/stats"
	"github.com/verte-zerg/tuitables/internal/store"
)

var (
	revisitUser       string
	revisitWeakTop    int
	revisitWeakWindow int
)

func newRevisitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revisit",
		Short: "List facts missed in the last session and the weakest facts overall",
		Args:  cobra.NoArgs,
		RunE:  runRevisitCmd,
	}
	cmd.Flags().StringVar(&revisitUser, "user", "", "user filter")
	cmd.Flags().IntVar(&revisitWeakTop, "weak-top", defaultWeakTop, "number of weak facts to list (0 = none)")
	cmd.Flags().IntVar(&revisitWeakWindow, "weak-window", defaultWeakWindow, "number of recent sessions to compute weak facts")
	return cmd
}

func runRevisitCmd(cmd *cobra.Command, _ []string) error {
	if revisitWeakTop < 0 {
		return fmt.Errorf("--weak-top must be >= 0")
	}
	if revisitWeakWindow < 0 {
		return fmt.Errorf("--weak-window must be >= 0")
	}
	st, closeStore, err := openStore()
	if err != nil {
		return err
	}
	defer closeStore()
	return writeRevisit(context.Background(), cmd.OutOrStdout(), st, strings.TrimSpace(revisitUser), revisitWeakTop, revisitWeakWindow)
}

func writeRevisit(ctx context.Context, w io.Writer, st *store.Store, user string, weakTop, weakWindow int) error {
	carry, err := st.LastCarryOver(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to load last session: %w", err)
	}
	var lines []string
	switch {
	case carry == nil:
		lines = append(lines, "No finished sessions yet.")
	case len(carry.Items) == 0:
		lines = append(lines, fmt.Sprintf("Last session (tables %d-%d): nothing to revisit.", carry.MinTable, carry.MaxTable))
	default:
		lines = append(lines, fmt.Sprintf("Last session (tables %d-%d): %s", carry.MinTable, carry.MaxTable, joinItems(carry.Items)))
	}
	if err := writeLines(w, lines); err != nil {
		return err
	}
	if weakTop == 0 {
		return nil
	}

	aggs, err := st.GetWeakItems(ctx, weakWindow, user)
	if err != nil {
		return fmt.Errorf("failed to load weak facts: %w", err)
	}
	weak := stats.SelectWeakFacts(aggs, weakTop)
	if len(weak) == 0 {
		return writeLines(w, []string{"", "No weak facts in recent sessions."})
	}
	selected := make(map[model.Item]struct{}, len(weak))
	for _, it := range weak {
		selected[it] = struct{}{}
	}
	rows := make([]model.ItemAggregate, 0, len(weak))
	for _, agg := range aggs {
		if _, ok := selected[agg.Item]; ok {
			rows = append(rows, agg)
		}
	}
	lines = append([]string{"", fmt.Sprintf("Weakest facts (last %d sessions):", weakWindow)}, stats.FactTableLines(rows)...)
	return writeLines(w, lines)
}

func joinItems(items []model.Item) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.String()
	}
	return strings.Join(parts, ", ")
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}
