package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/modsec-lab/aegis/pkg/domain/interfaces"
	"github.com/modsec-lab/aegis/pkg/repository/firestore"
	"github.com/modsec-lab/aegis/pkg/repository/memory"
	"github.com/modsec-lab/aegis/pkg/repository/redis"
	"github.com/modsec-lab/aegis/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend string

	projectID  string
	databaseID string

	redisAddr     string
	redisPassword string
	redisDB       int64
}

func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Usage:       "Repository backend type (memory, firestore or redis)",
			Value:       "memory",
			Category:    "Repository",
			Sources:     cli.EnvVars("AEGIS_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("AEGIS_FIRESTORE_PROJECT_ID"),
			Destination: &r.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Repository",
			Sources:     cli.EnvVars("AEGIS_FIRESTORE_DATABASE_ID"),
			Destination: &r.databaseID,
		},
		&cli.StringFlag{
			Name:        "redis-addr",
			Usage:       "Redis address (required when using redis backend)",
			Category:    "Repository",
			Sources:     cli.EnvVars("AEGIS_REDIS_ADDR"),
			Destination: &r.redisAddr,
		},
		&cli.StringFlag{
			Name:        "redis-password",
			Usage:       "Redis password",
			Category:    "Repository",
			Sources:     cli.EnvVars("AEGIS_REDIS_PASSWORD"),
			Destination: &r.redisPassword,
		},
		&cli.IntFlag{
			Name:        "redis-db",
			Usage:       "Redis database number",
			Category:    "Repository",
			Sources:     cli.EnvVars("AEGIS_REDIS_DB"),
			Destination: &r.redisDB,
		},
	}
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context) (interfaces.Repository, error) {
	switch r.backend {
	case "firestore":
		if r.projectID == "" {
			return nil, goerr.New("firestore-project-id is required when using firestore backend")
		}
		repo, err := firestore.New(ctx, r.projectID, r.databaseID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize firestore repository")
		}
		logging.Default().Info("Using Firestore repository",
			"project_id", r.projectID,
			"database_id", r.databaseID,
		)
		return repo, nil

	case "redis":
		if r.redisAddr == "" {
			return nil, goerr.New("redis-addr is required when using redis backend")
		}
		repo, err := redis.New(ctx, r.redisAddr, r.redisPassword, int(r.redisDB))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize redis repository")
		}
		logging.Default().Info("Using Redis repository", "addr", r.redisAddr, "db", r.redisDB)
		return repo, nil

	case "memory":
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.New("invalid repository backend", goerr.V("backend", r.backend))
	}
}
