package repository

import (
	"github.com/deppfellow/bctw-api/internal/database"
	"github.com/deppfellow/bctw-api/internal/server"
)

// Repositories is a container for all repository instances.
type Repositories struct {
	Animal     *AnimalRepository
	Collar     *CollarRepository
	Attachment *AttachmentRepository
	Code       *CodeRepository
	Alert      *AlertRepository
	User       *UserRepository
	Onboarding *OnboardingRepository
}

// NewRepositories constructs the repository container over the server's
// pool. Code lookups are cached in Redis when a client is configured.
func NewRepositories(s *server.Server) *Repositories {
	gw := s.DB.Gateway(s.Config.Observability.Logging.SlowQueryThreshold)
	schemas := Schemas{Core: s.Config.Database.Schema, API: s.Config.Database.APISchema}

	var cache CodeCache
	if s.Redis != nil {
		cache = NewRedisCodeCache(s.Redis, s.Config.Redis.CodeCacheTTL, s.Logger)
	}

	return newRepositories(gw, schemas, cache)
}

func newRepositories(gw *database.Gateway, schemas Schemas, cache CodeCache) *Repositories {
	return &Repositories{
		Animal:     NewAnimalRepository(gw, schemas),
		Collar:     NewCollarRepository(gw, schemas),
		Attachment: NewAttachmentRepository(gw, schemas),
		Code:       NewCodeRepository(gw, schemas, cache),
		Alert:      NewAlertRepository(gw, schemas),
		User:       NewUserRepository(gw, schemas),
		Onboarding: NewOnboardingRepository(gw, schemas),
	}
}
