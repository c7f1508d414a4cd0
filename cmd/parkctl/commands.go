package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/spec-kit/parking-service/internal/booking"
	"github.com/spec-kit/parking-service/pkg/client"
)

const usage = `usage: parkctl <command> [flags]

commands:
  register  create an account
  login     sign in and store the session
  whoami    show the signed-in user
  logout    forget the stored session
  book      reserve a spot and pay for it`

type cli struct {
	api       *client.Client
	out       io.Writer
	password  func(prompt string) (string, error)
	processor booking.PaymentProcessor
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	switch args[0] {
	case "register":
		return c.register(ctx, args[1:])
	case "login":
		return c.login(ctx, args[1:])
	case "whoami":
		return c.whoami(ctx)
	case "logout":
		if err := c.api.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(c.out, "signed out")
		return nil
	case "book":
		return c.book(ctx, args[1:])
	}
	return fmt.Errorf("unknown command %q\n%s", args[0], usage)
}

func (c *cli) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password (prompted when empty)")
	phone := fs.String("phone", "", "phone number")
	owner := fs.Bool("owner", false, "register as a spot owner")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pw, err := c.resolvePassword(*password)
	if err != nil {
		return err
	}
	req := client.RegisterRequest{Name: *name, Email: *email, Password: pw}
	if *phone != "" {
		req.Phone = phone
	}
	if *owner {
		req.Role = "owner"
	}

	s, err := c.api.Register(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "registered %s (%s), session valid until %s\n", s.User.Email, s.User.Role, s.ExpiresAt.Format(time.RFC3339))
	return nil
}

func (c *cli) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pw, err := c.resolvePassword(*password)
	if err != nil {
		return err
	}
	s, err := c.api.Login(ctx, *email, pw)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "signed in as %s, session valid until %s\n", s.User.Email, s.ExpiresAt.Format(time.RFC3339))
	return nil
}

func (c *cli) whoami(ctx context.Context) error {
	p, err := c.api.CurrentUser(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s <%s> role=%s id=%s\n", p.Name, p.Email, p.Role, p.ID)
	return nil
}

func (c *cli) book(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("book", flag.ContinueOnError)
	spotID := fs.String("spot", "", "spot id")
	title := fs.String("title", "", "spot title")
	address := fs.String("address", "", "spot address")
	rate := fs.Float64("rate", 0, "hourly rate in dollars")
	vehicleID := fs.String("vehicle", "", "vehicle id")
	vehicleMake := fs.String("make", "", "vehicle make")
	model := fs.String("model", "", "vehicle model")
	plate := fs.String("plate", "", "license plate")
	start := fs.String("start", "", "start time, RFC 3339")
	end := fs.String("end", "", "end time, RFC 3339")
	method := fs.String("method", "card", "payment method")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := c.api.Session(); err != nil {
		return fmt.Errorf("%w: run parkctl login first", err)
	}

	window, err := parseWindow(*start, *end)
	if err != nil {
		return err
	}

	flow := booking.NewFlow(c.processor, nil)
	spot := booking.Spot{ID: *spotID, Title: *title, Address: *address, HourlyRateCents: int64(math.Round(*rate * 100))}
	if err := flow.SelectSpot(spot); err != nil {
		return err
	}
	if err := flow.StartBooking(); err != nil {
		return err
	}
	pending, err := flow.Submit(booking.Request{
		Vehicle: booking.Vehicle{ID: *vehicleID, Make: *vehicleMake, Model: *model, LicensePlate: *plate},
		Window:  window,
	})
	if err != nil {
		return err
	}
	q := pending.Quote
	fmt.Fprintf(c.out, "%s for %d hour(s): parking %s + service fee %s = %s\n",
		pending.VehicleInfo, q.Hours, dollars(q.PriceCents), dollars(q.ServiceFeeCents), dollars(q.TotalCents))

	confirmed, err := flow.Pay(ctx, *method)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "booking %s %s, transaction %s, paid %s\n",
		confirmed.ID, confirmed.Status, confirmed.Payment.TransactionID, dollars(confirmed.Payment.AmountCents))
	return nil
}

func (c *cli) resolvePassword(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if c.password == nil {
		return "", errors.New("password required")
	}
	return c.password("Password: ")
}

// terminal reads secrets without echo.
type terminal struct {
	fd         int
	out        io.Writer
	isTerminal func(fd int) bool
	read       func(fd int) ([]byte, error)
}

func stdinTerminal() terminal {
	return terminal{
		fd:         int(os.Stdin.Fd()),
		out:        os.Stderr,
		isTerminal: term.IsTerminal,
		read:       term.ReadPassword,
	}
}

// readPassword returns exactly what was typed; surrounding spaces are part
// of the password, as they are for -password.
func (t terminal) readPassword(prompt string) (string, error) {
	if !t.isTerminal(t.fd) {
		return "", errors.New("password required: pass -password or run in a terminal")
	}
	fmt.Fprint(t.out, prompt)
	raw, err := t.read(t.fd)
	fmt.Fprintln(t.out)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func parseWindow(start, end string) (booking.Window, error) {
	if start == "" || end == "" {
		return booking.Window{}, errors.New("-start and -end are required")
	}
	s, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return booking.Window{}, fmt.Errorf("invalid -start: %w", err)
	}
	e, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return booking.Window{}, fmt.Errorf("invalid -end: %w", err)
	}
	return booking.Window{Start: s, End: e}, nil
}

func dollars(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
