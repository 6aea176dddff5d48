package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/noah-isme/fitcoach-api/internal/models"
	"github.com/noah-isme/fitcoach-api/internal/remote"
	"github.com/noah-isme/fitcoach-api/internal/repository"
)

const (
	sourceAPI      = "api"
	sourceFixtures = "fixtures"
)

func (a *app) remoteClient(ctx context.Context) (*remote.Client, error) {
	client, err := remote.New(remote.Options{
		BaseURL:    a.apiURL,
		Token:      a.token,
		Timeout:    a.cfg.Remote.Timeout,
		RetryCount: 1,
		Logger:     a.logger,
	})
	if err != nil {
		return nil, err
	}
	if a.email != "" {
		if _, err := client.Login(ctx, a.email, a.password); err != nil {
			return nil, fmt.Errorf("login: %w", err)
		}
	}
	return client, nil
}

// load fetches a collection from the API. It falls back to the demo
// fixtures when no API is configured or the request fails.
func load[T any](ctx context.Context, a *app, fetch func(*remote.Client, context.Context) ([]T, error), fixtures func(repository.Fixtures) []T) ([]T, string) {
	client, err := a.remoteClient(ctx)
	if err == nil {
		var records []T
		if records, err = fetch(client, ctx); err == nil {
			return records, sourceAPI
		}
	}
	if !errors.Is(err, remote.ErrNotConfigured) {
		fmt.Fprintf(a.errOut, "warning: %v; showing demo data\n", err)
	}
	return fixtures(repository.DemoFixtures(a.now(), "")), sourceFixtures
}

func (a *app) loadClients(ctx context.Context) ([]models.Client, string) {
	return load(ctx, a, (*remote.Client).Clients, func(f repository.Fixtures) []models.Client {
		clients, _ := repository.NewStaticClients(f.Clients).ListByCoach(ctx, repository.DemoCoachID)
		return clients
	})
}

func (a *app) loadWorkouts(ctx context.Context) ([]models.Workout, string) {
	return load(ctx, a, (*remote.Client).Workouts, func(f repository.Fixtures) []models.Workout {
		workouts, _ := repository.NewStaticWorkouts(f.Workouts).ListByCoach(ctx, repository.DemoCoachID)
		return workouts
	})
}
