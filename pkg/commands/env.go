package commands

import (
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"tableflip.dev/beho/pkg/logging"
	"tableflip.dev/beho/pkg/note"
	"tableflip.dev/beho/pkg/session"
	"tableflip.dev/beho/pkg/store"
)

// env is what every command needs: the store, a loaded session and the
// notes service over the same store.
type env struct {
	cfg   store.Config
	store store.Store
	log   *zap.Logger
	sess  *session.Manager
	notes *note.Service
}

func openEnv() (*env, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return nil, err
	}

	lc := logging.ConfigFromEnv()
	if lvl := viper.GetString("log.level"); lvl != "" {
		lc.Level = lvl
	}
	if viper.GetBool("log.dev") {
		lc.Dev = true
	}
	lc.Dir = cfg.LogPath()
	log, err := logging.Init(lc)
	if err != nil {
		return nil, err
	}

	sess := session.NewManager(st, session.WithLogger(log.Named("session")))
	if err := sess.Load(); err != nil {
		sess.Close()
		_ = log.Sync()
		return nil, err
	}
	return &env{
		cfg:   cfg,
		store: st,
		log:   log,
		sess:  sess,
		notes: &note.Service{Store: st},
	}, nil
}

func (e *env) Close() {
	e.sess.Close()
	_ = e.log.Sync()
}

// withEnv runs fn against a freshly opened env and routes its error
// through the output options.
func withEnv(fn func(*env) error) error {
	e, err := openEnv()
	if err != nil {
		return oo.HandleError(err)
	}
	defer e.Close()
	return oo.HandleError(fn(e))
}
