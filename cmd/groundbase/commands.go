package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/groundworkhq/groundbase"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check backend health and report which variant is active",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := store.Ping(cmd.Context()); err != nil {
			return fmt.Errorf("backend %s: %w", store.BackendName(), err)
		}
		fmt.Printf("ok (%s)\n", store.BackendName())
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <table> [field=value ...]",
	Short: "Fetch the first record matching the filter, as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := parseFilter(args[1:])
		if err != nil {
			return err
		}
		rec, err := store.Get(cmd.Context(), args[0], filter)
		if err != nil {
			return err
		}
		if rec == nil {
			fmt.Fprintln(os.Stderr, "no match")
			os.Exit(1)
		}
		return printJSON(rec)
	},
}

var listCmd = &cobra.Command{
	Use:   "list <table> [field=value ...]",
	Short: "List records matching the filter, as JSON lines",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := parseFilter(args[1:])
		if err != nil {
			return err
		}
		orderBy, err := parseOrderBy(cmd)
		if err != nil {
			return err
		}
		recs, err := store.List(cmd.Context(), args[0], filter, orderBy)
		if err != nil {
			return err
		}
		for _, rec := range recs {
			if err := printJSON(rec); err != nil {
				return err
			}
		}
		return nil
	},
}

var nextCmd = &cobra.Command{
	Use:   "next <sequence> <partition>",
	Short: "Allocate the next value of a partitioned sequence",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		partition, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("partition must be an integer: %q", args[1])
		}
		value, err := store.NextSequenceValue(cmd.Context(), args[0], partition)
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	},
}

var initCountersCmd = &cobra.Command{
	Use:   "init-counters <sequence>",
	Short: "Create the counter table for a sequence on the active backend",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := store.EnsureCounterTable(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("counter table ready for sequence %q (%s)\n", args[0], store.BackendName())
		return nil
	},
}

func init() {
	listCmd.Flags().String("order-by", "", "order results by this field")
	listCmd.Flags().Bool("desc", false, "descending order")
}

// parseFilter turns field=value arguments into an equality filter. Values
// parse as int, then float, then bool, falling back to string.
func parseFilter(args []string) (groundbase.Filter, error) {
	if len(args) == 0 {
		return nil, nil
	}
	filter := make(groundbase.Filter, len(args))
	for _, arg := range args {
		k, v, ok := splitPair(arg)
		if !ok {
			return nil, fmt.Errorf("filter must be field=value, got %q", arg)
		}
		filter[k] = parseScalar(v)
	}
	return filter, nil
}

func parseOrderBy(cmd *cobra.Command) (*groundbase.OrderBy, error) {
	field, err := cmd.Flags().GetString("order-by")
	if err != nil || field == "" {
		return nil, err
	}
	desc, _ := cmd.Flags().GetBool("desc")
	return &groundbase.OrderBy{Field: field, Descending: desc}, nil
}

func splitPair(arg string) (string, string, bool) {
	for i := 0; i < len(arg); i++ {
		if arg[i] == '=' {
			return arg[:i], arg[i+1:], i > 0
		}
	}
	return "", "", false
}

func parseScalar(s string) interface{} {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

func printJSON(rec groundbase.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
