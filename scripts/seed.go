package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	database "github.com/filmotheque/movies-api/app/db"
	"github.com/filmotheque/movies-api/config"
)

// Seeds an admin account and a handful of movies for local development.
// Re-running is safe; existing rows are left untouched.
func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		log.Fatalf("Failed to generate database config: %v", err)
	}
	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		log.Fatalf("Failed to initialize database pool: %v", err)
	}
	defer pool.Close()

	if err := seedAdmin(ctx, pool); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}
	if err := seedMovies(ctx, pool); err != nil {
		log.Fatalf("Failed to seed movies: %v", err)
	}

	logger.Info("Seeding complete")
}

func seedAdmin(ctx context.Context, pool *pgxpool.Pool) error {
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "changeme-admin"
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `
        INSERT INTO users (first_name, last_name, mail, username, password, roles)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (mail) DO NOTHING`,
		"Admin", "Filmotheque", "admin@filmotheque.local", "admin", string(hashed), []string{"admin", "user"})
	return err
}

func seedMovies(ctx context.Context, pool *pgxpool.Pool) error {
	movies := []struct {
		title       string
		description string
		releaseDate time.Time
		director    string
	}{
		{"Le Samouraï", "Un tueur à gages solitaire est traqué par la police et ses commanditaires.",
			time.Date(1967, 10, 25, 0, 0, 0, 0, time.UTC), "Jean-Pierre Melville"},
		{"La Haine", "Vingt-quatre heures dans la vie de trois amis d'une cité de la banlieue parisienne.",
			time.Date(1995, 5, 31, 0, 0, 0, 0, time.UTC), "Mathieu Kassovitz"},
		{"Playtime", "Monsieur Hulot se perd dans un Paris ultra-moderne de verre et d'acier.",
			time.Date(1967, 12, 16, 0, 0, 0, 0, time.UTC), "Jacques Tati"},
	}

	for _, m := range movies {
		_, err := pool.Exec(ctx, `
            INSERT INTO movies (title, description, release_date, director)
            SELECT $1, $2, $3, $4
            WHERE NOT EXISTS (SELECT 1 FROM movies WHERE title = $1)`,
			m.title, m.description, m.releaseDate, m.director)
		if err != nil {
			return err
		}
	}
	return nil
}
