package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"dsa_arena/internal/domain/repository"
	"dsa_arena/internal/importer"
	"dsa_arena/internal/platform/config"
	"dsa_arena/internal/platform/database"
	"dsa_arena/internal/platform/logger"
)

const usage = `usage: importer <command> [flags]

commands:
  import          -file questions.tsv -sheet NAME [-description D] [-image PATH] [-platform-from-link] [-replace]
  manifest        -file sheets.yaml
  prime-progress  create missing zero progress rows for every user and sheet
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	config.Load()
	appLog, err := logger.New(config.AppConfig.LogMode)
	if err != nil {
		fmt.Printf("init logger: %v\n", err)
		os.Exit(1)
	}
	defer appLog.Sync()

	ctx := context.Background()
	cmd, args := os.Args[1], os.Args[2:]

	var run func(ctx context.Context, im *importer.Importer) error
	switch cmd {
	case "import":
		run = importCmd(args)
	case "manifest":
		run = manifestCmd(args)
	case "prime-progress":
		run = func(ctx context.Context, im *importer.Importer) error {
			n, err := im.PrimeProgress(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("primed %d progress rows\n", n)
			return nil
		}
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := database.Connect(ctx, appLog); err != nil {
		fmt.Printf("connect database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close(appLog)
	if err := database.Migrate(ctx, database.DB, appLog); err != nil {
		fmt.Printf("migrate: %v\n", err)
		os.Exit(1)
	}

	im := importer.New(
		repository.NewPgTxRunner(database.DB),
		repository.NewPgSheetRepository(database.DB),
		repository.NewPgQuestionRepository(database.DB),
		repository.NewPgProgressRepository(database.DB),
		appLog,
	)
	if err := run(ctx, im); err != nil {
		appLog.Error("importer failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

func importCmd(args []string) func(context.Context, *importer.Importer) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	file := fs.String("file", "", "path to the TSV export")
	sheet := fs.String("sheet", "", "sheet name")
	description := fs.String("description", "", "sheet description")
	image := fs.String("image", "", "sheet image path under the media root")
	platformFromLink := fs.Bool("platform-from-link", false, "derive each question's platform from its link")
	replace := fs.Bool("replace", false, "delete the existing sheet before importing")
	fs.Parse(args)

	if *file == "" || *sheet == "" {
		fs.Usage()
		os.Exit(2)
	}
	return func(ctx context.Context, im *importer.Importer) error {
		res, err := im.ImportFile(ctx, *file, importer.Options{
			SheetName:        *sheet,
			Description:      *description,
			Image:            *image,
			PlatformFromLink: *platformFromLink,
			Replace:          *replace,
		})
		if err != nil {
			return err
		}
		fmt.Printf("imported %d questions into %q (%d skipped, %d topics)\n", res.Inserted, *sheet, res.Skipped, res.Topics)
		return nil
	}
}

func manifestCmd(args []string) func(context.Context, *importer.Importer) error {
	fs := flag.NewFlagSet("manifest", flag.ExitOnError)
	file := fs.String("file", "", "path to the YAML manifest")
	fs.Parse(args)

	if *file == "" {
		fs.Usage()
		os.Exit(2)
	}
	return func(ctx context.Context, im *importer.Importer) error {
		f, err := os.Open(*file)
		if err != nil {
			return err
		}
		defer f.Close()
		m, err := importer.ParseManifest(f)
		if err != nil {
			return err
		}
		results, err := im.ImportManifest(ctx, m, filepath.Dir(*file))
		for i, res := range results {
			fmt.Printf("%s: %d imported, %d skipped\n", m.Sheets[i].Name, res.Inserted, res.Skipped)
		}
		return err
	}
}
