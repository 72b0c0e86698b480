package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"PocketTrade/service/trade/internal/catalog"
	"PocketTrade/service/trade/internal/config"
	"PocketTrade/service/trade/internal/db"
	"PocketTrade/service/trade/internal/lists"
	"PocketTrade/service/trade/internal/match"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "match-check",
		Usage: "Calcola i partner di scambio di un utente da DB o da fixture",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "catalog",
				Usage: "cartella con cards.json, sets.json, rarity.json (default: download dal dataset pubblico)",
			},
		},
		Commands: []*cli.Command{
			dbCmd,
			fixtureCmd,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Println("Error: ", err)
		os.Exit(1)
	}
}

var queryFlags = []cli.Flag{
	&cli.StringFlag{
		Name:     "user",
		Required: true,
		Usage:    "user id del richiedente",
	},
	&cli.IntFlag{
		Name:  "offset",
		Usage: "offset della pagina",
	},
	&cli.IntFlag{
		Name:  "limit",
		Usage: "dimensione della pagina (0 = tutti)",
	},
	&cli.StringFlag{
		Name:  "ranking",
		Value: string(match.RankByScore),
		Usage: "score | balance",
	},
	&cli.IntFlag{
		Name:  "workers",
		Value: 4,
		Usage: "goroutine per il calcolo dei candidati",
	},
}

var dbCmd = &cli.Command{
	Name:  "db",
	Usage: "Legge liste e profili dal Postgres configurato via env",
	Flags: queryFlags,
	Action: func(c *cli.Context) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		envPath := os.Getenv("GO_DOTENV_PATH")
		if envPath == "" {
			envPath = "service/trade/.env"
		}
		if err := godotenv.Overload(envPath); err != nil {
			logger.Warn("impossibile caricare .env", "path", envPath, "error", err)
		}
		cfg := config.Load()

		database, err := db.Open(c.Context, cfg.DBDSN)
		if err != nil {
			return err
		}
		defer database.Close()

		holder, err := loadCatalog(c.Context, logger, c.String("catalog"), catalog.URLs{
			Cards:  cfg.CatalogCardsURL,
			Sets:   cfg.CatalogSetsURL,
			Rarity: cfg.CatalogRarityURL,
		})
		if err != nil {
			return err
		}
		repo := lists.NewRepo(database)
		return run(c, logger, repo, repo, holder)
	},
}

var fixtureCmd = &cli.Command{
	Name:  "fixture",
	Usage: "Carica un fixture JSON in memoria e calcola i match",
	Flags: append([]cli.Flag{
		&cli.StringFlag{
			Name:     "file",
			Required: true,
			Usage:    "fixture {\"users\": [...]}",
		},
	}, queryFlags...),
	Action: func(c *cli.Context) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		fixture, err := lists.ReadFixture(c.String("file"))
		if err != nil {
			return err
		}
		holder, err := loadCatalog(c.Context, logger, c.String("catalog"), catalog.URLs{
			Cards:  config.DefaultCardsURL,
			Sets:   config.DefaultSetsURL,
			Rarity: config.DefaultRarityURL,
		})
		if err != nil {
			return err
		}

		store := lists.NewMemoryStore()
		if err := lists.NewService(logger, store, holder).Seed(c.Context, fixture); err != nil {
			return err
		}
		return run(c, logger, store, store, holder)
	},
}

// loadCatalog usa la cartella locale se indicata, altrimenti scarica il dataset.
func loadCatalog(ctx context.Context, logger *slog.Logger, dir string, urls catalog.URLs) (*catalog.Holder, error) {
	var source catalog.Source = catalog.NewHTTPSource(&http.Client{Timeout: 30 * time.Second}, urls)
	if dir != "" {
		source = catalog.NewDirSource(dir)
	}
	holder := catalog.NewHolder(logger, catalog.NewLoader(logger, source, nil, nil))
	if err := holder.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return holder, nil
}

func run(c *cli.Context, logger *slog.Logger, reader lists.Reader, profiles lists.ProfileReader, cards lists.CardRules) error {
	userID, err := uuid.Parse(c.String("user"))
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	ranking, err := match.ParseRanking(c.String("ranking"))
	if err != nil {
		return err
	}

	engine := match.NewEngine(logger, reader, match.Options{Workers: c.Int("workers"), Cards: cards})
	service := match.NewService(logger, engine, profiles)
	page, err := service.Matches(c.Context, userID, match.Query{
		Offset:  c.Int("offset"),
		Limit:   c.Int("limit"),
		Ranking: ranking,
	})
	if err != nil {
		if errors.Is(err, match.ErrUserNotFound) {
			return fmt.Errorf("utente %s non trovato", userID)
		}
		return err
	}

	fmt.Printf("user_id=%s total=%d offset=%d has_more=%v degraded=%v\n",
		userID, page.Total, page.Offset, page.HasMore, page.Degraded)
	for i, p := range page.Partners {
		fmt.Printf("%d. partner=%s username=%s friend_id=%s score=%d gives=[%s] takes=[%s]\n",
			page.Offset+i+1, p.PartnerID, p.Username, p.FriendID, p.Score,
			joinIDs(p.WantsFromPartner), joinIDs(p.WantsFromSelf))
	}
	for _, d := range page.Dropped {
		fmt.Printf("dropped list=%s card=%s reason=%s partner=%s\n", d.List, d.Card, d.Reason, d.PartnerID)
	}
	return nil
}

func joinIDs(ids []catalog.CardID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ",")
}
