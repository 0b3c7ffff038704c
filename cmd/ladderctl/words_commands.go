package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"wordladder/internal/models"
)

func newWordsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "words",
		Short: "Inspect and edit the lexicon",
	}
	cmd.AddCommand(newWordsListCommand(ctx))
	cmd.AddCommand(newWordsComponentsCommand(ctx))
	cmd.AddCommand(newWordsLinkCommand(ctx))
	return cmd
}

func newWordsListCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active words in curriculum order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return errors.New("--limit must not be negative")
			}
			st, err := ctx.openStore(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			words, err := st.graph.ListActiveWords(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(words) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No active words")
				return nil
			}

			rows := make([][]string, len(words))
			for i, w := range words {
				rows[i] = wordRow(w)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Word", "Sound group", "Stage"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum words to list (0 lists all)")
	return cmd
}

func newWordsComponentsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "components <word-id>",
		Short: "Show the direct components of a word",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wordID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid word id %q", args[0])
			}
			st, err := ctx.openStore(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			components, err := st.graph.ResolveComposition(cmd.Context(), wordID)
			if err != nil {
				return err
			}
			if len(components) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Word %d has no components\n", wordID)
				return nil
			}

			rows := make([][]string, len(components))
			for i, c := range components {
				rows[i] = append([]string{strconv.Itoa(c.Position)}, wordRow(c.Component)...)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Position", "ID", "Word", "Sound group", "Stage"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}

func newWordsLinkCommand(ctx *commandContext) *cobra.Command {
	var parentID, componentID int64
	var position int

	cmd := &cobra.Command{
		Use:   "link",
		Short: "Add a component to a word's composition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			link, err := st.graph.InsertComponent(cmd.Context(), parentID, componentID, position)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Linked %q into word %d at position %d\n",
				link.Component.Text, link.ParentWordID, link.Position)
			return nil
		},
	}
	cmd.Flags().Int64Var(&parentID, "parent", 0, "Parent word id")
	cmd.Flags().Int64Var(&componentID, "component", 0, "Component word id")
	cmd.Flags().IntVar(&position, "position", 0, "Position of the component within the parent")
	_ = cmd.MarkFlagRequired("parent")
	_ = cmd.MarkFlagRequired("component")
	_ = cmd.MarkFlagRequired("position")
	return cmd
}

func wordRow(w models.Word) []string {
	return []string{
		strconv.FormatInt(w.ID, 10),
		w.Text,
		string(w.SoundGroup),
		strconv.Itoa(w.Stage),
	}
}
