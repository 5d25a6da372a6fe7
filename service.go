package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"ewintr.nl/councilbrief/feed"
	"ewintr.nl/councilbrief/handler"
	"ewintr.nl/councilbrief/model"
	"ewintr.nl/councilbrief/pipeline"
	"ewintr.nl/councilbrief/storage"
	"ewintr.nl/councilbrief/summarize"
	"ewintr.nl/councilbrief/transcript"
	"github.com/joho/godotenv"
	"golang.org/x/exp/slog"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

func main() {
	godotenv.Load()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr))

	postgres, err := storage.NewPostgres(storage.PostgresInfo{
		Host:     getParam("POSTGRES_HOST", "localhost"),
		Port:     getParam("POSTGRES_PORT", "5432"),
		User:     getParam("POSTGRES_USER", "councilbrief"),
		Password: getParam("POSTGRES_PASSWORD", "councilbrief"),
		Database: getParam("POSTGRES_DB", "councilbrief"),
	})
	if err != nil {
		logger.Error("unable to connect to postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	reportRepo := storage.NewPostgresReportRepository(postgres)

	var vecRepo storage.ReportVecRepository
	if host := getParam("WEAVIATE_HOST", ""); host != "" {
		weaviate, err := storage.NewWeaviate(host, getParam("WEAVIATE_APIKEY", ""), getParam("OPENAI_API_KEY", ""))
		if err != nil {
			logger.Error("unable to connect to weaviate", slog.String("error", err.Error()))
			os.Exit(1)
		}
		vecRepo = weaviate
	}

	feedReader := feed.NewIQM2(feed.IQM2Info{
		FeedURL: getParam("FEED_URL", "https://sanramonca.iqm2.com/Services/RSS.aspx?Feed=Calendar"),
		Body:    getParam("FEED_BODY", "City Council"),
	})

	ytClient, err := youtube.NewService(ctx, option.WithAPIKey(getParam("YOUTUBE_API_KEY", "")))
	if err != nil {
		logger.Error("unable to create youtube service", slog.String("error", err.Error()))
		os.Exit(1)
	}
	locator := transcript.NewLocator(
		transcript.NewYoutube(ytClient),
		transcript.NewTimedText(getParam("CAPTION_LANG", "en")),
		getParam("VIDEO_QUERY", "San Ramon City Council Meeting"),
		logger)

	backends, err := configuredBackends()
	if err != nil {
		logger.Error("unable to configure backends", slog.String("error", err.Error()))
		os.Exit(1)
	}
	engine, err := summarize.NewEngine(backends, logger)
	if err != nil {
		logger.Error("unable to create summarize engine", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var evaluator pipeline.Evaluator
	if getParam("EVALUATE_SUMMARIES", "false") == "true" {
		evaluator = summarize.NewEvaluator(getParam("GEMINI_API_KEY", ""), getParam("GEMINI_MODEL", "gemini-2.5-flash"))
	}

	fetchInterval, err := time.ParseDuration(getParam("FETCH_INTERVAL", "1h"))
	if err != nil {
		logger.Error("unable to parse fetch interval", slog.String("error", err.Error()))
		os.Exit(1)
	}
	meetingTimeout, err := time.ParseDuration(getParam("MEETING_TIMEOUT", "5m"))
	if err != nil {
		logger.Error("unable to parse meeting timeout", slog.String("error", err.Error()))
		os.Exit(1)
	}
	overwrite := getParam("OVERWRITE_REPORTS", "false") == "true"

	pl := pipeline.NewPipeline(feedReader, reportRepo, vecRepo, locator, engine, evaluator, overwrite, meetingTimeout, logger)
	go pl.Watch(ctx, fetchInterval)
	logger.Info("pipeline started")

	port, err := strconv.Atoi(getParam("API_PORT", "8080"))
	if err != nil {
		logger.Error("invalid port", slog.String("error", err.Error()))
		os.Exit(1)
	}
	go http.ListenAndServe(fmt.Sprintf(":%d", port), handler.NewServer(reportRepo, logger))
	logger.Info("http server started")

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt)
	<-done

	logger.Info("service stopped")
}

// configuredBackends builds the fallback chain from the BACKENDS list, in
// the order given there.
func configuredBackends() ([]summarize.Backend, error) {
	backends := []summarize.Backend{}
	for _, name := range strings.Split(getParam("BACKENDS", "gemini,groq,openrouter"), ",") {
		name = strings.TrimSpace(name)
		switch name {
		case "gemini":
			backends = append(backends, summarize.NewGeminiBackend(getParam("GEMINI_API_KEY", ""), model.BackendSpec{
				Name:          "gemini",
				Model:         getParam("GEMINI_MODEL", "gemini-2.5-flash"),
				MaxInputChars: getParamInt("GEMINI_MAX_INPUT_CHARS", 120000),
			}))
		case "groq":
			backends = append(backends, summarize.NewOpenAIBackend(getParam("GROQ_API_KEY", ""), "https://api.groq.com/openai/v1", model.BackendSpec{
				Name:          "groq",
				Model:         getParam("GROQ_MODEL", "llama-3.3-70b-versatile"),
				MaxInputChars: getParamInt("GROQ_MAX_INPUT_CHARS", 18000),
			}))
		case "openrouter":
			backends = append(backends, summarize.NewOpenAIBackend(getParam("OPENROUTER_API_KEY", ""), "https://openrouter.ai/api/v1", model.BackendSpec{
				Name:          "openrouter",
				Model:         getParam("OPENROUTER_MODEL", "deepseek/deepseek-r1-0528:free"),
				MaxInputChars: getParamInt("OPENROUTER_MAX_INPUT_CHARS", 64000),
			}))
		case "openai":
			backends = append(backends, summarize.NewOpenAIBackend(getParam("OPENAI_API_KEY", ""), "", model.BackendSpec{
				Name:          "openai",
				Model:         getParam("OPENAI_MODEL", "gpt-4o-mini"),
				MaxInputChars: getParamInt("OPENAI_MAX_INPUT_CHARS", 24000),
			}))
		case "":
			// empty list entries are tolerated
		default:
			return nil, fmt.Errorf("unknown backend %q", name)
		}
	}

	return backends, nil
}

func getParam(param, def string) string {
	if val, ok := os.LookupEnv(param); ok {
		return val
	}
	return def
}

func getParamInt(param string, def int) int {
	val, ok := os.LookupEnv(param)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return i
}
