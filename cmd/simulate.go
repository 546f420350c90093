package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"freeze_dryer/internal/config"
	"freeze_dryer/internal/device"
	"freeze_dryer/internal/models"
)

type simulateFlags struct {
	recipeID string
	tick     time.Duration
	every    int
}

func simulateCmd(rf *rootFlags) *cobra.Command {
	var f simulateFlags
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a recipe on the simulator and print its progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := rf.load()
			if err != nil {
				return err
			}
			recipe, err := findRecipe(cfg.RecipesFile, f.recipeID)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sim := device.NewSimulator(log.Named("sim"),
				device.WithTick(f.tick),
				device.WithConnectDelay(0),
				device.WithFinishDelay(cfg.SimFinishDelay),
			)
			finished := make(chan struct{}, 1)
			unsub := sim.OnStatusUpdate(progressPrinter(cmd.OutOrStdout(), f.every, finished))
			defer unsub()

			if err := sim.Connect(ctx); err != nil {
				return err
			}
			defer func() { _ = sim.Disconnect(cmd.Context()) }()

			sim.StartProcess(recipe)
			if sim.Status().ProcessState != models.StateRunning {
				return fmt.Errorf("recipe %q did not start", recipe.ID)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "running %q (%d steps, %v simulated)\n",
				recipe.Name, len(recipe.Steps), sim.RunDuration())

			select {
			case <-finished:
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "finished")
			case <-ctx.Done():
				sim.StopProcess()
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "stopped")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&f.recipeID, "recipe", "rec_default_1", "Recipe ID (built-in or from recipes.file)")
	cmd.Flags().DurationVar(&f.tick, "tick", 10*time.Millisecond, "Wall time per simulated second")
	cmd.Flags().IntVar(&f.every, "every", 60, "Print every N simulated seconds")
	return cmd
}

func findRecipe(path, id string) (models.Recipe, error) {
	extra, err := config.LoadRecipes(path)
	if err != nil {
		return models.Recipe{}, err
	}
	for _, r := range append(models.DefaultRecipes(), extra...) {
		if r.ID == id {
			return r, nil
		}
	}
	return models.Recipe{}, fmt.Errorf("recipe %q not found", id)
}

// progressPrinter prints step changes, every Nth second and the finish, then signals finished once.
func progressPrinter(w io.Writer, every int, finished chan<- struct{}) func(models.DryerStatus) {
	lastStep := models.NoStep
	done := false
	return func(st models.DryerStatus) {
		if done || st.ActiveRecipe == nil {
			return
		}
		stepChanged := st.CurrentStepIndex != lastStep
		lastStep = st.CurrentStepIndex
		if stepChanged || st.ProcessState == models.StateFinished || (every > 0 && st.ElapsedTime%every == 0) {
			name := ""
			if step, ok := st.CurrentStep(); ok {
				name = step.Name
			}
			_, _ = fmt.Fprintf(w, "t=%6ds  step %d/%d %-18s  %7.1f °C  %9.0f mTorr  %s\n",
				st.ElapsedTime, st.CurrentStepIndex+1, len(st.ActiveRecipe.Steps), name,
				st.CurrentTemperature, st.CurrentPressure, st.ProcessState)
		}
		if st.ProcessState == models.StateFinished {
			done = true
			finished <- struct{}{}
		}
	}
}
