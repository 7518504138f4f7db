package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/restaurant-reservation/internal/client"
	"github.com/iliyamo/restaurant-reservation/internal/model"
)

type clientFlags struct {
	backend string
	baseURL string
	token   string
}

// NewReservationsCmd drives the client facade, against a running server
// (--backend rest) or the database directly (--backend direct).
func NewReservationsCmd() *cobra.Command {
	f := &clientFlags{}
	cmd := &cobra.Command{
		Use:     "reservations",
		Aliases: []string{"res"},
		Short:   "Book, cancel and list reservations",
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&f.backend, "backend", envOr("CLIENT_BACKEND", client.BackendREST), "rest or direct")
	pf.StringVar(&f.baseURL, "url", envOr("CLIENT_BASE_URL", "http://localhost:8080"), "server URL for the rest backend")
	pf.StringVar(&f.token, "token", os.Getenv("CLIENT_TOKEN"), "bearer access token for the rest backend")

	cmd.AddCommand(newListCmd(f), newBookCmd(f), newCancelCmd(f))
	return cmd
}

// open returns the selected backend and a cleanup func.
func (f *clientFlags) open(ctx context.Context) (client.Backend, func(), error) {
	if f.backend != client.BackendDirect {
		b, err := client.New(client.Config{Backend: f.backend, BaseURL: f.baseURL, Token: f.token})
		return b, func() {}, err
	}
	a, err := bootstrap(ctx)
	if err != nil {
		return nil, nil, err
	}
	if err := a.withServices(); err != nil {
		a.close()
		return nil, nil, err
	}
	b, err := client.New(client.Config{Backend: client.BackendDirect, Services: a.services})
	if err != nil {
		a.close()
		return nil, nil, err
	}
	return b, a.close, nil
}

func newListCmd(f *clientFlags) *cobra.Command {
	var page int
	var all bool
	c := &cobra.Command{
		Use:   "list",
		Short: "List reservations, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			b, done, err := f.open(ctx)
			if err != nil {
				return err
			}
			defer done()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tTIME\tGUESTS\tTABLE\tSTATUS\tCUSTOMER")
			if all {
				for r, err := range client.All(ctx, b) {
					if err != nil {
						return err
					}
					writeRow(w, r)
				}
				return w.Flush()
			}
			p, err := b.ListReservations(ctx, page)
			if err != nil {
				return err
			}
			for _, r := range p.Reservations {
				writeRow(w, r)
			}
			fmt.Fprintf(w, "\npage %d of %d (%d total)\n", p.CurrentPage, p.Pages, p.Total)
			return w.Flush()
		},
	}
	c.Flags().IntVar(&page, "page", 1, "page number")
	c.Flags().BoolVar(&all, "all", false, "walk every page")
	return c
}

func newBookCmd(f *clientFlags) *cobra.Command {
	var req model.BookingRequest
	c := &cobra.Command{
		Use:   "book",
		Short: "Book a table",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			b, done, err := f.open(ctx)
			if err != nil {
				return err
			}
			defer done()

			res, err := b.CreateReservation(ctx, req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	c.Flags().StringVar(&req.Customer.Name, "name", "", "guest name")
	c.Flags().StringVar(&req.Customer.Email, "email", "", "guest email")
	c.Flags().StringVar(&req.Customer.Phone, "phone", "", "guest phone")
	c.Flags().StringVar(&req.Date, "date", "", "date as YYYY-MM-DD")
	c.Flags().StringVar(&req.Time, "time", "", "slot as HH:MM")
	c.Flags().IntVar(&req.Guests, "guests", 2, "party size")
	c.Flags().BoolVar(&req.NewsletterOptIn, "newsletter", false, "subscribe the guest to the newsletter")
	c.Flags().StringVar(&req.Surface, "surface", model.SurfaceWeb, "booking surface (web or quick)")
	for _, name := range []string{"name", "email", "date", "time"} {
		_ = c.MarkFlagRequired(name)
	}
	return c
}

func newCancelCmd(f *clientFlags) *cobra.Command {
	var email string
	var admin bool
	c := &cobra.Command{
		Use:   "cancel ID",
		Short: "Cancel a reservation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid reservation id %q", args[0])
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			b, done, err := f.open(ctx)
			if err != nil {
				return err
			}
			defer done()

			res, err := b.CancelReservation(ctx, model.CancelRequest{ReservationID: id, Email: email, Admin: admin})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	c.Flags().StringVar(&email, "email", "", "email the reservation was booked under")
	c.Flags().BoolVar(&admin, "admin", false, "cancel with operator rights; the rest backend needs an ADMIN --token")
	return c
}

func writeRow(w io.Writer, r model.Reservation) {
	fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\t%s\n", r.ID, r.Date, r.Time, r.Guests, r.TableNumber, r.Status, r.CustomerEmail)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
