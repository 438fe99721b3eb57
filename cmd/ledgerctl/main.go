package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kingpin"
	"github.com/dafibh/fortuna/loan-ledger/internal/config"
	"github.com/dafibh/fortuna/loan-ledger/internal/domain"
	"github.com/dafibh/fortuna/loan-ledger/internal/repository/postgres"
	"github.com/dafibh/fortuna/loan-ledger/internal/service"
	"github.com/dafibh/fortuna/loan-ledger/internal/util"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const dateLayout = "2006-01-02"

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cmdMigrate := kingpin.Command("migrate", "Apply the database schema")

	cmdPeriods := kingpin.Command("periods", "Count interest periods started between two dates")
	periodsStart := cmdPeriods.Flag("start", "Interest start date (YYYY-MM-DD)").Required().String()
	periodsAt := cmdPeriods.Flag("at", "Evaluation date (YYYY-MM-DD), defaults to today").String()
	periodsCadence := cmdPeriods.Flag("period", "weekly or monthly").Default("monthly").Enum("weekly", "monthly")
	periodsPolicy := cmdPeriods.Flag("policy", "Monthly counting policy").Default("calendar").Enum("calendar", "anniversary")

	cmdState := kingpin.Command("state", "Print the derived state of a loan")
	stateLoan := cmdState.Arg("loan", "Loan ID").Required().String()

	cmdExport := kingpin.Command("export", "Write a loan statement workbook")
	exportLoan := cmdExport.Arg("loan", "Loan ID").Required().String()
	exportOutput := cmdExport.Flag("output", "Output file, defaults to the statement name").Short('o').String()

	cmdDue := kingpin.Command("due", "List active loans that are overdue, due soon or carry unpaid interest")

	cmd := kingpin.Parse()

	if cmd == cmdPeriods.FullCommand() {
		if err := periods(*periodsStart, *periodsAt, *periodsCadence, *periodsPolicy); err != nil {
			kingpin.Fatalf("%v", err)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	loanService := service.NewLoanService(postgres.NewLoanRepository(pool, cfg.Location), service.LoanServiceConfig{
		Location:      cfg.Location,
		MonthlyPolicy: cfg.MonthlyPolicy,
	})

	switch cmd {
	case cmdMigrate.FullCommand():
		err = postgres.Migrate(ctx, pool)
		if err == nil {
			log.Info().Msg("Schema applied")
		}
	case cmdState.FullCommand():
		err = printState(ctx, loanService, *stateLoan)
	case cmdExport.FullCommand():
		err = export(ctx, service.NewStatementService(loanService), *exportLoan, *exportOutput)
	case cmdDue.FullCommand():
		err = due(ctx, loanService)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", cmd).Msg("Command failed")
	}
}

func periods(start, at, period, policy string) error {
	startDate, err := time.Parse(dateLayout, start)
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}
	atDate := util.StartOfDay(time.Now().UTC())
	if at != "" {
		if atDate, err = time.Parse(dateLayout, at); err != nil {
			return fmt.Errorf("invalid --at: %w", err)
		}
	}

	cadence := domain.InterestPeriod(period).Cadence()
	p := util.MonthlyPolicy(policy)
	fmt.Printf("periods started: %d\n", util.PeriodsBetween(startDate, atDate, cadence, p))
	fmt.Printf("next period:     %s\n", util.NextPeriodStart(startDate, atDate, cadence, p).Format(dateLayout))
	return nil
}

func printState(ctx context.Context, loanService *service.LoanService, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid loan id: %w", err)
	}
	detail, err := loanService.Get(ctx, id)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]interface{}{
		"loan":  detail.Loan,
		"state": detail.State,
	})
}

func export(ctx context.Context, statements *service.StatementService, rawID, output string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid loan id: %w", err)
	}
	data, filename, err := statements.Export(ctx, id)
	if err != nil {
		return err
	}
	if output == "" {
		output = filename
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return err
	}
	log.Info().Str("file", output).Int("bytes", len(data)).Msg("Statement written")
	return nil
}

func due(ctx context.Context, loanService *service.LoanService) error {
	items, err := loanService.List(ctx, domain.LoanFilter{})
	if err != nil {
		return err
	}
	for _, item := range items {
		st := item.State
		if !st.IsOverdue && !st.IsDueSoon && st.PeriodsUnpaid == 0 {
			continue
		}
		dueDate := "-"
		if item.Loan.DueDate != nil {
			dueDate = item.Loan.DueDate.Format(dateLayout)
		}
		fmt.Printf("%s  %-6s %-30s due %-10s outstanding %12s  unpaid periods %3d  interest %10s\n",
			item.Loan.ID, item.Loan.Direction, item.Loan.CounterpartyName, dueDate,
			st.OutstandingPrincipal.StringFixed(2), st.PeriodsUnpaid, st.InterestAccrued.StringFixed(2))
	}
	return nil
}
