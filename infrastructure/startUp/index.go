package startup

import (
	"context"
	"time"

	"ekyc.io/application/authenticity"
	"ekyc.io/application/fieldcompare"
	"ekyc.io/application/liveness"
	"ekyc.io/application/placematch"
	"ekyc.io/application/policy"
	"ekyc.io/application/repository"
	"ekyc.io/application/services"
	verification_usecases "ekyc.io/application/usecases/verification"
	"ekyc.io/infrastructure/biometric"
	"ekyc.io/infrastructure/database"
	"ekyc.io/infrastructure/database/connection/datastore"
	pgconnection "ekyc.io/infrastructure/database/connection/postgres"
	"ekyc.io/infrastructure/database/repository/cache"
	pgrepository "ekyc.io/infrastructure/database/repository/postgres"
	"ekyc.io/infrastructure/env"
	fileupload "ekyc.io/infrastructure/file_upload"
	"ekyc.io/infrastructure/layout"
	"ekyc.io/infrastructure/logger"
	messagequeue "ekyc.io/infrastructure/message_queue"
	"ekyc.io/infrastructure/ocr"
	"ekyc.io/infrastructure/transliteration"
	"ekyc.io/infrastructure/workerpool"
	"github.com/rotisserie/eris"
)

// BuildEngines constructs the collaborators and the analysis engines. Nothing
// here touches a database, so the CLI can inspect images offline.
func BuildEngines(cfg *env.Config, configSource policy.ConfigSource) error {
	pool := workerpool.New(cfg.Pool.Size, cfg.AnalysisTimeout())
	collaborators := cfg.Collaborators

	faces := biometric.NewFaceService(collaborators.Face.BaseURL, collaborators.Face.APIKey, collaborators.Face.Timeout())
	var classifier liveness.SpoofClassifier
	if collaborators.UseSpoofClassifier {
		classifier = faces
	}

	places, err := placematch.DefaultGazetteer()
	if err != nil {
		return eris.Wrap(err, "startup: load gazetteer")
	}
	fields := cfg.Fields
	if len(fields) == 0 {
		fields = fieldcompare.DefaultFields()
	}
	var transliterator *transliteration.Client
	if collaborators.Transliteration.BaseURL != "" {
		transliterator = transliteration.NewClient(collaborators.Transliteration.BaseURL, collaborators.Transliteration.APIKey, collaborators.Transliteration.Timeout())
	}

	extractor := &verification_usecases.Extractor{Pool: pool}
	if collaborators.OCR.BaseURL != "" {
		extractor.OCR = ocr.NewClient(collaborators.OCR.BaseURL, collaborators.OCR.APIKey, collaborators.OCR.Timeout())
	} else {
		logger.Warning("ocr service not configured, field extraction is skipped")
	}
	if collaborators.Layout.BaseURL != "" {
		extractor.Layout = layout.NewClient(collaborators.Layout.BaseURL, collaborators.Layout.APIKey, collaborators.Layout.Timeout())
	}

	services.Documents = authenticity.NewEngine(cfg.Signals, pool, faces)
	services.Liveness = liveness.NewEngine(cfg.Liveness, pool, classifier)
	if transliterator != nil {
		services.Fields = fieldcompare.NewEngine(fields, places, transliterator)
	} else {
		services.Fields = fieldcompare.NewEngine(fields, places, nil)
	}
	services.Policy = policy.NewEngine(configSource)
	services.Verifier = &verification_usecases.Verifier{
		Pool:      pool,
		Documents: services.Documents,
		Liveness:  services.Liveness,
		Fields:    services.Fields,
		Policy:    services.Policy,
		Extractor: extractor,
	}
	if collaborators.Face.BaseURL != "" {
		services.Verifier.Faces = faces
	} else {
		logger.Warning("face service not configured, face matching is skipped")
	}
	return nil
}

// StartServices connects the stores, applies migrations and wires persistence
// behind the engines. Unconfigured stores are skipped.
func StartServices(cfg *env.Config) error {
	database.SetUpDatabase(cfg.Storage)

	recorder := &verification_usecases.Recorder{CacheTTL: cfg.CacheTTL()}
	var configSource policy.ConfigSource
	if pgconnection.Pool != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := pgrepository.Migrate(ctx, pgconnection.Pool)
		cancel()
		if err != nil {
			return eris.Wrap(err, "startup: migrate postgres")
		}
		store := &pgrepository.ConfigStore{Pool: pgconnection.Pool}
		configSource = store
		services.PolicyStore = store
		recorder.Audits = &pgrepository.AuditStore{Pool: pgconnection.Pool}
	}
	if datastore.VerificationAttemptModel != nil {
		recorder.Attempts = repository.VerificationAttemptRepo()
	}
	if cache.Cache.Available() {
		recorder.Cache = cache.Cache
	}

	if err := BuildEngines(cfg, configSource); err != nil {
		return err
	}

	fileupload.InitialiseEvidenceStore(cfg.Storage)
	if fileupload.Evidence != nil {
		recorder.Evidence = fileupload.Evidence
	}
	messagequeue.StartQueue(cfg.Storage, recorder)
	if messagequeue.TaskQueue != nil {
		recorder.Queue = messagequeue.TaskQueue
	}
	services.Recorder = recorder
	services.Verifier.Recorder = recorder
	return nil
}

// CleanUpServices drains pending records before the queue and stores close.
func CleanUpServices() {
	services.Recorder.Wait()
	messagequeue.StopQueue()
	database.CloseDatabase()
	logger.Sync()
}
