package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/fitcoach-api/internal/models"
	"github.com/noah-isme/fitcoach-api/pkg/listquery"
)

const browseHelp = `commands: /status <status|all>, /client <id>, /sort <field> [asc|desc], /page <n>, /quit
any other line searches`

func newBrowseCmd(a *app) *cobra.Command {
	var size int
	cmd := &cobra.Command{
		Use:       "browse clients|workouts",
		Short:     "Interactively search and filter a collection",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"clients", "workouts"},
		RunE: func(cmd *cobra.Command, args []string) error {
			debounce := a.cfg.Lists.SearchDebounce
			q := listquery.NewQuery(size)
			if args[0] == "clients" {
				records, source := a.loadClients(cmd.Context())
				return browse(a, records, q, debounce, models.SortClients, false, func(w io.Writer, res listquery.Result[models.Client]) {
					printClients(w, res, source)
				})
			}
			records, source := a.loadWorkouts(cmd.Context())
			return browse(a, records, q, debounce, models.SortWorkouts, true, func(w io.Writer, res listquery.Result[models.Workout]) {
				printWorkouts(w, res, source)
			})
		},
	}
	cmd.Flags().IntVar(&size, "size", 10, "page size")
	return cmd
}

// browse reads commands from stdin until EOF or /quit. Results are printed
// by the view whenever the query changes, including from the debounce
// timer, so writes are serialised.
func browse[T listquery.Record](a *app, records []T, q listquery.Query, debounce time.Duration, sorter listquery.Sorter[T], owned bool, render func(io.Writer, listquery.Result[T])) error {
	var mu sync.Mutex
	write := func(fn func(io.Writer)) {
		mu.Lock()
		defer mu.Unlock()
		fn(a.out)
	}

	view := listquery.NewView(records, q, listquery.ViewOptions[T]{
		Debounce: debounce,
		Sorter:   sorter,
		OnChange: func(res listquery.Result[T]) {
			write(func(w io.Writer) {
				fmt.Fprintln(w)
				render(w, res)
			})
		},
	})
	defer view.Close()
	write(func(w io.Writer) { fmt.Fprintln(w, browseHelp) })

	scanner := bufio.NewScanner(a.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "/") {
			view.SetSearch(line)
			continue
		}

		// Commands act on the latest search term, not a stale one.
		view.Flush()
		name, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)
		switch name {
		case "/quit", "/q":
			return nil
		case "/status":
			view.SetStatus(strings.ToLower(arg))
		case "/client":
			if !owned {
				write(func(w io.Writer) { fmt.Fprintln(w, "/client only applies to workouts") })
				continue
			}
			view.SetOwner(arg)
		case "/sort":
			field, order, _ := strings.Cut(arg, " ")
			if order = strings.TrimSpace(order); order == "" {
				order = "asc"
			}
			view.SetSort(field, order)
		case "/page":
			n, err := strconv.Atoi(arg)
			if err != nil || n < 1 {
				write(func(w io.Writer) { fmt.Fprintln(w, "/page needs a number starting at 1") })
				continue
			}
			view.SetPage(n - 1)
		case "/search":
			view.SetSearch(arg)
			view.Flush()
		default:
			write(func(w io.Writer) { fmt.Fprintf(w, "unknown command %s\n%s\n", name, browseHelp) })
		}
	}
	view.Flush()
	return scanner.Err()
}
