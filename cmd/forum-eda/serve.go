package main

import (
	"context"
	"flag"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/NYU-MSDSE-SWG/dark-web/internal/ingest"
	spg "github.com/NYU-MSDSE-SWG/dark-web/internal/storage/postgres"
	transport "github.com/NYU-MSDSE-SWG/dark-web/internal/transport/http"
)

func (a *app) serve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(a.out)
	port := fs.String("port", a.cfg.Port, "listen port")
	if err := fs.Parse(args); err != nil {
		return err
	}
	log := a.log.Component("serve")

	db, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Info("db: connected")

	a.reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ingestor := ingest.NewIngestor(spg.NewWriter(db), a.cfg.QueueMaxSize, a.cfg.BatchMaxSize, a.cfg.BatchMaxWait,
		log, a.metrics)
	// The loop outlives the signal so posts accepted before shutdown still land.
	ingestor.Start(context.WithoutCancel(ctx))
	log.WithField("queue", a.cfg.QueueMaxSize).WithField("batch", a.cfg.BatchMaxSize).Info("ingest: started")

	deps := &transport.ServerDeps{
		Cfg:      a.cfg,
		Ingestor: ingestor,
		Store:    db,
		Metrics:  a.metrics,
		Log:      log,
		Now:      func() time.Time { return time.Now().UTC() },
	}

	srv := &http.Server{
		Addr:              ":" + *port,
		Handler:           deps.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.WithField("port", *port).Info("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err = <-errc:
		ingestor.Close()
		if werr := ingestor.Wait(); err == nil {
			err = werr
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)
	ingestor.Close()
	if werr := ingestor.Wait(); err == nil {
		err = werr
	}
	log.Info("ingest: drained")
	return err
}
