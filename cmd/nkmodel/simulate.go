package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/wyfcoding/nkmodel/internal/nkmodel/application"
	"github.com/wyfcoding/nkmodel/internal/nkmodel/domain"
	"github.com/wyfcoding/nkmodel/internal/nkmodel/infrastructure/persistence/memory"
	grpcserver "github.com/wyfcoding/nkmodel/internal/nkmodel/interfaces/grpc"
	"github.com/wyfcoding/nkmodel/pkg/grpcclient"
)

type simulateFlags struct {
	name   string
	params domain.ModelParameters
	init   domain.InitialConditions
	theta  float64
	nse    float64

	shockLocation string
	shockKind     string
	shockSign     string
	shockSize     float64
	shockStart    int
	shockDuration int

	horizon int
	format  string
	percent bool
	remote  string
}

func (f *simulateFlags) command() application.RunSimulationCommand {
	params := f.params
	if f.theta != 0 || f.nse != 0 {
		params.Wage = &domain.WageParameters{Theta: f.theta, NSE: f.nse}
	}
	return application.RunSimulationCommand{
		Name:       f.name,
		Parameters: params,
		Initial:    f.init,
		Shock: domain.ShockSpec{
			Location:    domain.ShockLocation(f.shockLocation),
			Kind:        domain.ShockKind(f.shockKind),
			Sign:        domain.ShockSign(f.shockSign),
			Size:        f.shockSize,
			StartPeriod: f.shockStart,
			Duration:    f.shockDuration,
		},
		Horizon: f.horizon,
	}
}

func buildSimulateCmd() *cobra.Command {
	f := &simulateFlags{}
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run one impulse-response simulation and print the paths",
		Example: `  nkmodel simulate --horizon 20 --shock-kind SINGLE --shock-size 0.01 --shock-start 2
  nkmodel simulate --remote localhost:50051 --format csv --percent`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := parseFormat(f.format); err != nil {
				return err
			}
			dto, err := runSimulate(cmd.Context(), f)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), dto, f.format, f.percent)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.name, "name", "cli", "scenario name")
	flags.Float64Var(&f.params.Sigma, "sigma", 0.1, "real-rate sensitivity of the output gap")
	flags.Float64Var(&f.params.Gamma, "gamma", 0.1, "output-gap weight in the Phillips curve")
	flags.Float64Var(&f.params.Beta, "beta", 0.1, "expectation weight")
	flags.Float64Var(&f.params.PhiPi, "phi-pi", 0.1, "Taylor-rule inflation coefficient")
	flags.Float64Var(&f.params.PhiY, "phi-y", 0.1, "Taylor-rule output-gap coefficient")
	flags.Float64Var(&f.params.RealInterestRate, "real-rate", 0.1, "equilibrium real interest rate")
	flags.Float64Var(&f.init.Pi0, "pi0", 0.1, "initial inflation")
	flags.Float64Var(&f.init.OutputGap0, "output-gap0", 1, "initial output gap")
	flags.Float64Var(&f.init.W0, "w0", 0, "initial wage index (0 means 100)")
	flags.Float64Var(&f.theta, "theta", 0, "Calvo wage stickiness, enables the wage extension")
	flags.Float64Var(&f.nse, "nse", 0, "labour-supply elasticity, enables the wage extension")

	flags.StringVar(&f.shockLocation, "shock-location", string(domain.ShockLocationPhillips), "PHILLIPS or IS")
	flags.StringVar(&f.shockKind, "shock-kind", string(domain.ShockKindNone), "NONE, SINGLE or PERSISTENT")
	flags.StringVar(&f.shockSign, "shock-sign", string(domain.ShockSignAdd), "ADD or SUBTRACT (Phillips shocks)")
	flags.Float64Var(&f.shockSize, "shock-size", 0, "shock size as a fraction, 0.01 = 1%")
	flags.IntVar(&f.shockStart, "shock-start", 0, "first shocked period")
	flags.IntVar(&f.shockDuration, "shock-duration", 0, "number of shocked periods for PERSISTENT")

	flags.IntVar(&f.horizon, "horizon", 1, "number of periods T")
	flags.StringVar(&f.format, "format", formatTable, "output format: json, csv or table")
	flags.BoolVar(&f.percent, "percent", false, "scale series by 100 for display")
	flags.StringVar(&f.remote, "remote", "", "run on a server via gRPC (host:port)")
	return cmd
}

func runSimulate(ctx context.Context, f *simulateFlags) (*application.SimulationDTO, error) {
	cmd := f.command()
	if f.remote == "" {
		app := application.NewSimulationApplicationService(application.Dependencies{
			Repo: memory.NewSimulationRunRepository(),
		}, application.Options{})
		return app.RunSimulation(ctx, cmd)
	}

	conn, err := grpcclient.NewClient(grpcclient.ClientConfig{
		Target:         f.remote,
		ConnTimeout:    5,
		RequestTimeout: 30,
		MaxRetries:     2,
		RetryDelay:     200,
		RetryMethods:   []string{grpcserver.GetSimulationMethod, grpcserver.PreviewShockMethod},
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", f.remote, err)
	}
	defer conn.Close()
	return grpcserver.NewClient(conn).RunSimulation(ctx, cmd)
}
