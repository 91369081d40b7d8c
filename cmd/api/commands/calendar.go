package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mealcal/core/internal/client"
	"github.com/mealcal/core/internal/ports"
)

// NewCalendarCommand creates the calendar client commands
func NewCalendarCommand() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("MEALCAL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	calendarCmd := &cobra.Command{
		Use:   "calendar",
		Short: "Plan meals against a running MealCal API",
	}
	calendarCmd.PersistentFlags().String("api-url", "http://localhost:3000/api", "API base URL (env MEALCAL_API_URL)")
	calendarCmd.PersistentFlags().String("token", "", "Bearer token (env MEALCAL_TOKEN)")
	_ = v.BindPFlag("api-url", calendarCmd.PersistentFlags().Lookup("api-url"))
	_ = v.BindPFlag("token", calendarCmd.PersistentFlags().Lookup("token"))

	newClient := func() *client.Client {
		return client.New(v.GetString("api-url"), client.WithToken(v.GetString("token")))
	}

	calendarCmd.AddCommand(
		newLoginCommand(newClient),
		newShowCommand(newClient),
		newAddCommand(newClient),
		newViewCommand(newClient),
		newCompleteCommand(newClient),
		newCheckCommand(newClient),
		newDeleteCommand(newClient),
		newExportCommand(newClient),
		newCookCommand(),
	)
	return calendarCmd
}

func newLoginCommand(newClient func() *client.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and print a token for MEALCAL_TOKEN",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			resp, err := newClient().Login(cmd.Context(), email, password)
			if err != nil {
				return userError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Token)
			return nil
		},
	}
	cmd.Flags().String("email", "", "Account email")
	cmd.Flags().String("password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newShowCommand(newClient func() *client.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the month grid with planned meals",
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := client.NewEngine(newClient())
			month, _ := cmd.Flags().GetString("month")

			var err error
			if month == "" {
				err = engine.Load(cmd.Context())
			} else {
				t, perr := time.Parse("2006-01", month)
				if perr != nil {
					return fmt.Errorf("--month must be YYYY-MM: %w", perr)
				}
				err = engine.ShowMonth(cmd.Context(), t.Year(), t.Month())
			}
			if err != nil {
				return userError(err)
			}

			printGrid(cmd.OutOrStdout(), engine.Month(), engine.Grid())
			return nil
		},
	}
	cmd.Flags().String("month", "", "Month to show as YYYY-MM (default current)")
	return cmd
}

func newAddCommand(newClient func() *client.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Plan a meal",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, _ := cmd.Flags().GetString("date")
			day, err := time.Parse("2006-01-02", date)
			if err != nil {
				return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
			}

			engine := client.NewEngine(newClient())
			if err := engine.ShowMonth(cmd.Context(), day.Year(), day.Month()); err != nil {
				return userError(err)
			}
			engine.OpenCreate(day.Day())

			req, err := eventRequestFromFlags(cmd, engine.Form())
			if err != nil {
				return err
			}
			event, err := engine.Submit(cmd.Context(), req)
			if err != nil {
				return userError(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (id %d)\n", engine.Notice().Message, event.ID)
			return nil
		},
	}
	cmd.Flags().String("title", "", "Meal title")
	cmd.Flags().String("date", "", "Date as YYYY-MM-DD")
	cmd.Flags().String("from", "", "Start time HH:MM")
	cmd.Flags().String("to", "", "End time HH:MM")
	cmd.Flags().String("ingredients", "", "Comma separated ingredients")
	cmd.Flags().String("instructions", "", "Instructions separated by periods")
	cmd.Flags().Int64("recipe-id", 0, "Catalog recipe to link")
	for _, name := range []string{"title", "date", "from", "to"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func eventRequestFromFlags(cmd *cobra.Command, form *client.Form) (ports.EventRequest, error) {
	title, _ := cmd.Flags().GetString("title")
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	ingredients, _ := cmd.Flags().GetString("ingredients")
	instructions, _ := cmd.Flags().GetString("instructions")
	recipeID, _ := cmd.Flags().GetInt64("recipe-id")

	if form == nil {
		return ports.EventRequest{}, errors.New("no event form is open")
	}

	req := ports.EventRequest{
		Title:        title,
		Day:          ports.NewIntValue(form.Day),
		Month:        ports.NewIntValue(form.Month),
		Year:         ports.NewIntValue(form.Year),
		TimeFrom:     from,
		TimeTo:       to,
		Ingredients:  ports.ListValue{Joined: ingredients, IsText: true},
		Instructions: ports.ListValue{Joined: instructions, IsText: true},
	}
	if recipeID > 0 {
		req.RecipeID = ports.NewIntValue(int(recipeID))
	}
	return req, nil
}

func newViewCommand(newClient func() *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "view <event-id>",
		Short: "Show one planned meal with its checklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEventID(args[0])
			if err != nil {
				return err
			}
			engine := client.NewEngine(newClient())
			if err := engine.View(cmd.Context(), id); err != nil {
				return userError(err)
			}
			printDetail(cmd.OutOrStdout(), engine.Detail())
			return nil
		},
	}
}

func newCompleteCommand(newClient func() *client.Client) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <event-id>",
		Short: "Mark a meal as cooked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEventID(args[0])
			if err != nil {
				return err
			}
			engine := client.NewEngine(newClient())
			if err := engine.Complete(cmd.Context(), id); err != nil {
				return userError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), engine.Notice().Message)
			return nil
		},
	}
}

func newCheckCommand(newClient func() *client.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <event-id>",
		Short: "Toggle ingredients on a meal's checklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEventID(args[0])
			if err != nil {
				return err
			}
			items, _ := cmd.Flags().GetStringSlice("item")

			engine := client.NewEngine(newClient())
			if err := engine.View(cmd.Context(), id); err != nil {
				return userError(err)
			}
			for _, item := range items {
				if err := engine.ToggleIngredient(strings.TrimSpace(item)); err != nil {
					return err
				}
			}
			if err := engine.SaveChecklist(cmd.Context()); err != nil {
				return userError(err)
			}
			printDetail(cmd.OutOrStdout(), engine.Detail())
			return nil
		},
	}
	cmd.Flags().StringSlice("item", nil, "Ingredient to toggle (repeatable)")
	_ = cmd.MarkFlagRequired("item")
	return cmd
}

func newDeleteCommand(newClient func() *client.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <event-id>",
		Short: "Delete a planned meal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEventID(args[0])
			if err != nil {
				return err
			}
			yes, _ := cmd.Flags().GetBool("yes")

			engine := client.NewEngine(newClient())
			if err := engine.Load(cmd.Context()); err != nil {
				return userError(err)
			}
			if err := engine.RequestDelete(id); err != nil {
				return fmt.Errorf("event %d not found", id)
			}
			if !yes {
				pending := engine.PendingDelete()
				engine.CancelDelete()
				fmt.Fprintf(cmd.OutOrStdout(), "Delete %q? Run again with --yes to confirm.\n", pending.Title)
				return nil
			}
			if err := engine.ConfirmDelete(cmd.Context()); err != nil {
				return userError(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), engine.Notice().Message)
			return nil
		},
	}
	cmd.Flags().Bool("yes", false, "Confirm the delete")
	return cmd
}

func newExportCommand(newClient func() *client.Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the calendar as an .ics file",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			doc, err := newClient().ExportICS(cmd.Context())
			if err != nil {
				return userError(err)
			}
			if out == "-" {
				_, err = cmd.OutOrStdout().Write(doc)
				return err
			}
			if err := os.WriteFile(out, doc, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Calendar written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringP("out", "o", "mealcal.ics", "Output file, - for stdout")
	return cmd
}

func newCookCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cook",
		Short: "Run a cooking timer until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetDuration("for")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if limit > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, limit)
				defer cancel()
			}

			out := cmd.OutOrStdout()
			timer := client.NewTimer(nil)
			timer.Start()
			timer.Run(ctx, time.Second, func(clock string) {
				fmt.Fprintf(out, "\r%s", clock)
			})
			timer.Pause()
			fmt.Fprintf(out, "\rCooked for %s\n", timer.String())
			return nil
		},
	}
	cmd.Flags().Duration("for", 0, "Stop after this long (default until Ctrl-C)")
	return cmd
}

func parseEventID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid event id %q", raw)
	}
	return id, nil
}

// userError keeps raw transport detail out of terminal output
func userError(err error) error {
	return errors.New(client.DescribeError(err))
}

func printGrid(w io.Writer, month time.Time, cells []client.Cell) {
	fmt.Fprintf(w, "%s\n", month.Format("January 2006"))
	fmt.Fprintln(w, " Sun  Mon  Tue  Wed  Thu  Fri  Sat")

	var planned []client.Cell
	for i, cell := range cells {
		marker := " "
		switch {
		case cell.Today:
			marker = "*"
		case len(cell.Events) > 0:
			marker = "+"
		}
		if cell.InMonth {
			fmt.Fprintf(w, " %2d%s ", cell.Date.Day(), marker)
		} else {
			fmt.Fprint(w, "     ")
		}
		if i%7 == 6 {
			fmt.Fprintln(w)
		}
		if cell.InMonth && len(cell.Events) > 0 {
			planned = append(planned, cell)
		}
	}

	for _, cell := range planned {
		fmt.Fprintf(w, "\n%s\n", cell.Date.Format("Mon Jan 2"))
		for _, ev := range cell.Events {
			done := " "
			if ev.IsCompleted {
				done = "x"
			}
			fmt.Fprintf(w, "  [%s] #%d %s-%s %s\n", done, ev.ID, ev.TimeFrom, ev.TimeTo, ev.Title)
		}
	}
}

func printDetail(w io.Writer, detail *client.Detail) {
	if detail == nil {
		return
	}
	ev := detail.Event
	fmt.Fprintf(w, "#%d %s\n", ev.ID, ev.Title)
	fmt.Fprintf(w, "%04d-%02d-%02d %s-%s\n", ev.Year, ev.Month, ev.Day, ev.TimeFrom, ev.TimeTo)
	if ev.RecipeName != nil {
		fmt.Fprintf(w, "Recipe: %s\n", *ev.RecipeName)
	}
	if ev.IsCompleted {
		fmt.Fprintln(w, "Completed")
	}

	if len(detail.Checklist) > 0 {
		fmt.Fprintln(w, "\nIngredients:")
		names := make([]string, 0, len(detail.Checklist))
		for name := range detail.Checklist {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			mark := " "
			if detail.Checklist[name] {
				mark = "x"
			}
			fmt.Fprintf(w, "  [%s] %s\n", mark, name)
		}
	}

	if len(ev.Instructions) > 0 {
		fmt.Fprintln(w, "\nInstructions:")
		for i, step := range ev.Instructions {
			fmt.Fprintf(w, "  %d. %s\n", i+1, step)
		}
	}
}
