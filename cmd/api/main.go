package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/proview/proview-api/internal/config"
	"github.com/proview/proview-api/internal/handlers"
	"github.com/proview/proview-api/internal/janitor"
	"github.com/proview/proview-api/internal/middleware"
	"github.com/proview/proview-api/internal/rag"
	"github.com/proview/proview-api/internal/rag/embedding/googleEmbedding"
	"github.com/proview/proview-api/internal/rag/llm/groq"
	"github.com/proview/proview-api/internal/rag/vectorDB/qdrantDB"
	"github.com/proview/proview-api/internal/server"
	"github.com/proview/proview-api/pkg/logger_i"
)

var (
	listenAddr         string
	stopJanitorChannel chan bool
	janitorWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	if err := config.Load(); err != nil {
		logger.Error("Bad configuration", "error", err)
		return
	}
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	stopJanitorChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	middleware.Init(serviceContext)

	vectorDB := qdrantDB.GetQdrantClient(serviceContext)
	embeddingService := googleEmbedding.GetGoogleEmbeddingClient(serviceContext, config.GoogleEmbeddingModel, config.GoogleEmbeddingAPIKey)
	llmProvider := groq.GetGroqClient(config.GroqAPIKey, config.ModelName)

	if vectorDB == nil || embeddingService == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "VectorDB", vectorDB != nil, "EmbeddingService", embeddingService != nil, "LLMProvider", llmProvider != nil)
		return
	}

	ragService := rag.NewService(vectorDB, llmProvider, embeddingService)

	cleaner := janitor.New(vectorDB)
	cleaner.Start(stopJanitorChannel, &janitorWaitGroup)

	handlers.Init(ragService, cleaner)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		JanitorStop:      stopJanitorChannel,
		Group:            &janitorWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}
