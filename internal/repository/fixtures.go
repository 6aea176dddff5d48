package repository

import (
	"fmt"
	"time"

	"github.com/noah-isme/fitcoach-api/internal/models"
)

// DemoCoachID identifies the coach account seeded into the fixture store.
const DemoCoachID = "7d1c2f4e-0b55-4c2a-9d51-3f2a8f1e0c01"

// DemoCoachEmail is the login for the fixture coach.
const DemoCoachEmail = "coach@fitcoach.dev"

// Fixtures is a static demo collection served when no database is
// available.
type Fixtures struct {
	Users    []models.User
	Clients  []models.Client
	Workouts []models.Workout
}

// DemoFixtures builds the demo collection with dates relative to now.
// passwordHash is the bcrypt hash stored for the demo coach.
func DemoFixtures(now time.Time, passwordHash string) Fixtures {
	now = now.UTC().Truncate(time.Minute)
	day := 24 * time.Hour
	at := func(offset time.Duration) time.Time { return now.Add(offset) }
	ptr := func(t time.Time) *time.Time { return &t }

	coach := models.User{
		ID:           DemoCoachID,
		Email:        DemoCoachEmail,
		PasswordHash: passwordHash,
		FullName:     "Dana Shapiro",
		Phone:        "052-555-0101",
		Bio:          "Strength and conditioning coach.",
		Role:         models.RoleCoach,
		Active:       true,
		CreatedAt:    at(-400 * day),
		UpdatedAt:    at(-30 * day),
	}

	client := func(id, name, email, phone, program string, status models.ClientStatus, started time.Duration, lastActive *time.Time) models.Client {
		return models.Client{
			ID:          id,
			CoachID:     DemoCoachID,
			Name:        name,
			Email:       email,
			Phone:       phone,
			ProgramType: program,
			Status:      status,
			StartDate:   at(-started),
			LastActive:  lastActive,
			CreatedAt:   at(-started),
			UpdatedAt:   at(-started),
		}
	}

	clients := []models.Client{
		client("c0a8012e-1111-4e6a-8b0b-000000000001", "Ronit Cohen", "ronit.cohen@example.com", "050-123-4567", "Strength", models.ClientStatusActive, 120*day, ptr(at(-1*day))),
		client("c0a8012e-1111-4e6a-8b0b-000000000002", "Alon Levi", "alon.levi@example.com", "054-765-4321", "Weight Loss", models.ClientStatusPending, 3*day, nil),
		client("c0a8012e-1111-4e6a-8b0b-000000000003", "Noa Bar", "noa.bar@example.com", "052-222-3333", "Marathon Prep", models.ClientStatusActive, 60*day, ptr(at(-2*day))),
		client("c0a8012e-1111-4e6a-8b0b-000000000004", "Yossi Mizrahi", "yossi.m@example.com", "053-444-5555", "Rehabilitation", models.ClientStatusInactive, 300*day, ptr(at(-90*day))),
		client("c0a8012e-1111-4e6a-8b0b-000000000005", "Maya Friedman", "maya.friedman@example.com", "050-999-8888", "Hypertrophy", models.ClientStatusActive, 45*day, ptr(at(-3*time.Hour))),
		client("c0a8012e-1111-4e6a-8b0b-000000000006", "Daniel Katz", "daniel.katz@example.com", "058-111-2222", "Mobility", models.ClientStatusPending, 1*day, nil),
	}
	clients[0].Goals = "Deadlift 120kg by summer"
	clients[2].Goals = "Sub-4h marathon"
	clients[4].Goals = "Add 3kg lean mass"

	exercise := func(workoutID string, pos int, name string, sets, reps int, weight float64) models.Exercise {
		return models.Exercise{
			ID:          fmt.Sprintf("%s-e%d", workoutID, pos),
			WorkoutID:   workoutID,
			Name:        name,
			Sets:        sets,
			Reps:        reps,
			WeightKg:    weight,
			RestSeconds: 90,
			Position:    pos,
		}
	}

	workout := func(id string, c models.Client, title, description string, offset time.Duration, minutes int, completed bool, exercises ...models.Exercise) models.Workout {
		w := models.Workout{
			ID:              id,
			CoachID:         DemoCoachID,
			ClientID:        c.ID,
			ClientName:      c.Name,
			Title:           title,
			Description:     description,
			ScheduledFor:    at(offset),
			DurationMinutes: minutes,
			Completed:       completed,
			Exercises:       exercises,
			CreatedAt:       at(offset - 7*day),
			UpdatedAt:       at(offset - 7*day),
		}
		if completed {
			w.CompletedAt = ptr(at(offset + time.Duration(minutes)*time.Minute))
		}
		return w
	}

	const (
		w1 = "a1b2c3d4-2222-4f00-9c00-000000000001"
		w2 = "a1b2c3d4-2222-4f00-9c00-000000000002"
		w3 = "a1b2c3d4-2222-4f00-9c00-000000000003"
		w4 = "a1b2c3d4-2222-4f00-9c00-000000000004"
		w5 = "a1b2c3d4-2222-4f00-9c00-000000000005"
		w6 = "a1b2c3d4-2222-4f00-9c00-000000000006"
	)
	workouts := []models.Workout{
		workout(w1, clients[0], "Lower Body Strength", "Heavy compound day", -2*day, 60, true,
			exercise(w1, 0, "Back Squat", 5, 5, 90),
			exercise(w1, 1, "Romanian Deadlift", 4, 8, 70),
		),
		workout(w2, clients[0], "Upper Body Push", "Press focus", 1*day, 50, false,
			exercise(w2, 0, "Bench Press", 5, 5, 55),
			exercise(w2, 1, "Overhead Press", 4, 6, 35),
		),
		workout(w3, clients[2], "Tempo Run", "Threshold intervals", -1*day, 45, true,
			exercise(w3, 0, "Warm-up Jog", 1, 1, 0),
			exercise(w3, 1, "Tempo Intervals", 4, 1, 0),
		),
		workout(w4, clients[4], "Hypertrophy Pull", "Back and biceps volume", 2*day, 55, false,
			exercise(w4, 0, "Pull Up", 4, 10, 0),
			exercise(w4, 1, "Barbell Row", 4, 10, 50),
		),
		workout(w5, clients[4], "Leg Day", "Volume block week 3", 4*day, 60, false,
			exercise(w5, 0, "Front Squat", 4, 8, 60),
			exercise(w5, 1, "Walking Lunge", 3, 12, 20),
		),
		workout(w6, clients[1], "Intro Assessment", "Movement screen and baseline tests", 3*time.Hour, 40, false,
			exercise(w6, 0, "Goblet Squat", 2, 10, 12),
		),
	}

	return Fixtures{
		Users:    []models.User{coach},
		Clients:  clients,
		Workouts: workouts,
	}
}
