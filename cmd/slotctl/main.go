// slotctl drives the scheduling facade from the command line: the same
// plain-text operations an agent tool would call, straight against the
// configured ledger.
//
// Usage:
//
//	slotctl check -date 2025-06-05 -time 14:30:00
//	slotctl book -name "Jane Doe" -email jane@x.com -type virtual -date 2025-06-05 -time 14:30:00
//	slotctl slots -date 2025-06-05
//	slotctl update -id 3 -notes "prefers afternoon"
//	slotctl cancel -id 3
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"slotd/backend/internal/config"
	"slotd/backend/internal/service/booking"
	"slotd/backend/internal/store"
	"slotd/backend/internal/store/memory"
	"slotd/backend/internal/store/postgres"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	loc, err := time.LoadLocation(cfg.BookingTimezone)
	if err != nil {
		fmt.Fprintln(os.Stderr, "timezone:", err)
		os.Exit(1)
	}

	ledger, cleanup, err := openLedger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "store:", err)
		os.Exit(1)
	}
	defer cleanup()

	svc := booking.NewService(ledger, booking.Config{
		StartHour:          cfg.BookingStartHour,
		EndHour:            cfg.BookingEndHour,
		GranularityMinutes: cfg.BookingGranularity,
		Location:           loc,
	}, log, nil)
	facade := booking.NewFacade(svc, log)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()

	msg, err := run(ctx, facade, os.Args[1], os.Args[2:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	fmt.Println(msg)
}

func run(ctx context.Context, facade *booking.Facade, command string, args []string) (string, error) {
	fs := flag.NewFlagSet(command, flag.ContinueOnError)
	var (
		date     = fs.String("date", "", "date (YYYY-MM-DD)")
		timeStr  = fs.String("time", "", "time (HH:MM:SS)")
		name     = fs.String("name", "", "client name")
		email    = fs.String("email", "", "client email")
		apptType = fs.String("type", "", "appointment type (telephonic|virtual)")
		notes    = fs.String("notes", "", "notes")
		status   = fs.String("status", "", "status (scheduled|cancelled)")
		id       = fs.Int64("id", 0, "appointment id")
	)
	if err := fs.Parse(args); err != nil {
		return "", err
	}

	switch command {
	case "check":
		return facade.CheckAvailability(ctx, *date, *timeStr), nil
	case "book":
		return facade.CreateAppointment(ctx, *name, *email, *apptType, *date, *timeStr, *notes), nil
	case "slots":
		return facade.ListAvailableSlots(ctx, *date), nil
	case "update":
		in := booking.UpdateInput{}
		fs.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "name":
				in.Name = name
			case "email":
				in.Email = email
			case "type":
				in.AppointmentType = apptType
			case "date":
				in.Date = date
			case "time":
				in.Time = timeStr
			case "status":
				in.Status = status
			case "notes":
				in.Notes = notes
			}
		})
		return facade.UpdateAppointment(ctx, *id, in), nil
	case "cancel":
		return facade.CancelAppointment(ctx, *id), nil
	default:
		usage()
		return "", fmt.Errorf("unknown command %q", command)
	}
}

func openLedger(cfg config.Config) (store.BookingLedger, func(), error) {
	if cfg.DatabaseDriver == "memory" {
		return memory.NewLedger(), func() {}, nil
	}

	db, err := postgres.Open(cfg.DatabaseURL, postgres.PoolConfig{MaxOpenConns: 2})
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = postgres.Close(db)
		return nil, nil, err
	}
	return postgres.NewAppointmentRepo(db), func() { _ = postgres.Close(db) }, nil
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: slotctl <check|book|slots|update|cancel> [flags]")
}
