package archivehttp

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/sir_venger/photo_archive/internal/config"
	"github.com/sir_venger/photo_archive/internal/usecase/archivesvc"
)

type Server struct {
	Archives archivesvc.Service
	Cfg      *config.Config
	Logger   *zap.Logger

	archiver []string
	index    []byte
}

// NewServer конструктор
func NewServer(cfg *config.Config, logger *zap.Logger) (http.Handler, *Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	archiver, err := archivesvc.ResolveCommand(cfg.Archiver, cfg.Flatten)
	if err != nil {
		return nil, nil, err
	}

	archives, err := buildArchiveService(cfg, archiver, logger.Named("archives"))
	if err != nil {
		return nil, nil, err
	}

	index, err := loadIndex(afero.NewOsFs(), cfg.IndexPath)
	if err != nil {
		return nil, nil, err
	}

	srv := &Server{
		Archives: archives,
		Cfg:      cfg,
		Logger:   logger,
		archiver: archiver,
		index:    index,
	}

	return srv.routes(), srv, nil
}

func buildArchiveService(cfg *config.Config, command []string, logger *zap.Logger) (archivesvc.Service, error) {
	streamer, err := archivesvc.New(archivesvc.Deps{
		Root:       cfg.PhotosDir,
		Command:    command,
		ChunkSize:  cfg.ChunkSize,
		ChunkDelay: cfg.ChunkDelay.Duration(),
		QueueDepth: cfg.QueueDepth,
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build archive service: %w", err)
	}
	return streamer, nil
}

// routes регистрирует обработчики индекса, аптайма, здоровья и архивов.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.Logger.Named("http")))
	r.Use(middleware.Recoverer)

	r.Get("/", s.getIndex)
	r.Get("/uptime", s.getUptime)
	// Старое имя того же эндпоинта.
	r.Get("/smoke", s.getUptime)
	r.Get("/health", s.getHealth)

	r.Get("/archive/{archive_hash}", s.handle(s.getArchive))
	r.Get("/archive/{archive_hash}/", s.handle(s.getArchive))

	return r
}
