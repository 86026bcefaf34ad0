package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/yourusername/randomizer-api/internal/config"
)

// fix-db чинит состояние миграций после неудачного запуска:
//
//	fix-db                 показать текущую версию
//	fix-db -force 1        сбросить dirty-флаг и выставить версию 1
//	fix-db -steps -1       откатить одну миграцию
func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "путь к файлу конфигурации")
	force := flag.Int("force", -1, "принудительно выставить версию миграции (сбрасывает dirty)")
	steps := flag.Int("steps", 0, "применить (>0) или откатить (<0) указанное число миграций")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatal(err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+cfg.Database.MigrationsDir, "postgres", driver)
	if err != nil {
		log.Fatal(err)
	}

	switch {
	case *force >= 0:
		fmt.Printf("Forcing migration version to %d to clean dirty state...\n", *force)
		if err := m.Force(*force); err != nil {
			log.Fatalf("Failed to force version: %v", err)
		}
	case *steps != 0:
		fmt.Printf("Applying %d migration step(s)...\n", *steps)
		if err := m.Steps(*steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			log.Fatalf("Failed to apply steps: %v", err)
		}
	}

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		fmt.Println("No migrations applied yet.")
		return
	}
	if err != nil {
		log.Fatalf("Failed to read version: %v", err)
	}
	fmt.Printf("Current migration version: %d (dirty: %t)\n", version, dirty)
}
