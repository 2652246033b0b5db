package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sql-rag/internal/chromemdb"
	"sql-rag/internal/config"
	"sql-rag/internal/corpus"
	"sql-rag/internal/db"
	"sql-rag/internal/embedding"
	"sql-rag/internal/helper"
	"sql-rag/internal/indexer"
	"sql-rag/internal/llmservice"
	"sql-rag/internal/models"
	"sql-rag/internal/rag"
	"sql-rag/internal/retriever"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	// load .env if present, for API keys referenced by the config
	_ = godotenv.Load()

	schemaPath := flag.String("schema", "", "Path to the schema SQL file")
	examplesPath := flag.String("examples", "", "Path to the JSONL example file")
	question := flag.String("question", "", "Question to be answered")
	setup := flag.Bool("setup", false, "Apply the schema DDL to the relational database")
	execute := flag.Bool("execute", false, "Execute the generated SQL against the relational database")
	dryRun := flag.Bool("dry-run", false, "Dry run, parse the corpus but do not index it")
	flag.Parse()

	runID, err := helper.GenerateUUID()
	if err != nil {
		log.Fatal().Err(err).Msg("Error generating run id")
	}
	log.Logger = log.Logger.With().Str("run_id", runID).Logger()

	ctx := context.Background()

	if *setup {
		if *schemaPath == "" {
			log.Fatal().Msg("Please provide the schema file with the -schema flag when using -setup")
		}
		setupDatabase(ctx, *schemaPath)
		return
	}

	if *question != "" {
		answerQuestion(ctx, *question, *execute)
		return
	}

	if *schemaPath != "" || *examplesPath != "" {
		indexCorpus(ctx, *schemaPath, *examplesPath, *dryRun)
		return
	}

	log.Fatal().Msg("Please provide a corpus using the -schema/-examples flags or a question using the -question flag")
}

// indexCorpus builds the knowledge units and upserts them into the
// vector store. Run once per corpus version.
func indexCorpus(ctx context.Context, schemaPath, examplesPath string, dryRun bool) {
	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	var units []models.KnowledgeUnit
	if schemaPath != "" {
		ddlUnits, err := corpus.LoadSchema(schemaPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Error parsing schema file")
		}
		units = append(units, ddlUnits...)
	}
	if examplesPath != "" {
		exampleUnits, err := corpus.LoadExamples(examplesPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Error parsing example file")
		}
		units = append(units, exampleUnits...)
	}

	log.Info().Int("units", len(units)).Msg("Parsed corpus")
	if dryRun {
		helper.PrettyPrint(units)
		return
	}

	if err := helper.CreateFolder(cfg.VectorDB.Path); err != nil {
		log.Fatal().Err(err).Msg("Error creating vector database folder")
	}

	store, err := chromemdb.NewStore(cfg.VectorDB.Path, cfg.VectorDB.Collection, cfg.VectorDB.InMemory)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating vector store")
	}

	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	ix := indexer.New(embedder, store)
	if err := ix.Index(ctx, units); err != nil {
		log.Fatal().Err(err).Msg("Error indexing corpus")
	}

	log.Info().Int("stored", store.Count()).Msg("Corpus indexed")
}

// answerQuestion runs the online pipeline once.
func answerQuestion(ctx context.Context, question string, execute bool) {
	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	store, err := chromemdb.NewStore(cfg.VectorDB.Path, cfg.VectorDB.Collection, cfg.VectorDB.InMemory)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating vector store")
	}

	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	generator, err := llmservice.NewClient(&cfg.InferenceLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing inference client")
	}

	pipeline := rag.NewRAG(retriever.New(embedder, store), generator, &cfg.RAG)
	answer, err := pipeline.Answer(ctx, question)
	if err != nil {
		log.Fatal().Err(err).Msg("Error answering question")
	}

	log.Info().Msg("Question: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", answer.Question)

	if answer.Scratchpad != "" {
		log.Info().Msg("Scratchpad: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
		fmt.Printf("%s\n\n", answer.Scratchpad)
	}

	log.Info().Msg("SQL: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", answer.SQL)

	if !execute {
		return
	}

	dbClient, err := db.ConnectDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}
	dbInstance := db.NewDB(dbClient, cfg.Database.Debug)
	defer dbInstance.Close()

	rows, err := db.RunQuery(ctx, dbInstance, answer.SQL)
	if err != nil {
		log.Fatal().Err(err).Msg("Error executing generated SQL")
	}

	log.Info().Msg("Rows: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	helper.PrettyPrint(rows)
}

// setupDatabase applies the schema DDL to the relational database.
func setupDatabase(ctx context.Context, schemaPath string) {
	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	units, err := corpus.LoadSchema(schemaPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error parsing schema file")
	}

	dbClient, err := db.ConnectDB(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}
	dbInstance := db.NewDB(dbClient, cfg.Database.Debug)
	defer dbInstance.Close()

	if err := db.ApplySchema(ctx, dbInstance, units); err != nil {
		log.Fatal().Err(err).Msg("Error applying schema")
	}

	log.Info().Int("statements", len(units)).Msg("Schema applied")
}
