package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/beltcalc/beltcalc/pkg/capacity"
	"github.com/beltcalc/beltcalc/pkg/config"
	"github.com/beltcalc/beltcalc/pkg/events"
	"github.com/beltcalc/beltcalc/pkg/metrics"
)

var (
	conf config.Config
	hub  = events.NewHub(0)

	// Swapped as a whole whenever settings change; never modified in place.
	currentEngine atomic.Pointer[capacity.Engine]
)

func setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))
	router.Use(metrics.Middleware())

	router.GET("/version", getVersion)
	router.GET("/config", getConfig)
	router.PUT("/trace", setTrace)
	router.PUT("/default-angle", setDefaultAngle)
	router.GET("/table", getTable)

	router.POST("/angle", postAngle)
	router.POST("/k-factor", postKFactor)
	router.POST("/cross-section", postCrossSection)
	router.POST("/capacity", postCapacity)
	router.POST("/size", postSize)

	router.GET("/ws", serveWs)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	return router
}

func engine() *capacity.Engine {
	if e := currentEngine.Load(); e != nil {
		return e
	}
	return capacity.NewEngine()
}

// swapEngine rebuilds the engine from conf and tells websocket clients.
func swapEngine(reason string) {
	e := capacity.NewEngine(
		capacity.WithLogger(logrus.StandardLogger()),
		capacity.WithTrace(conf.Trace()),
		capacity.WithDefaultAngle(conf.DefaultAngle()),
	)
	currentEngine.Store(e)

	if e.Traced() && !logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.Warn("engine tracing is on but trace events are logged at debug level; run with --log-level debug to see them")
	}

	err := hub.Publish(events.EngineChanged, events.EngineChangedEvent{
		Reason:       reason,
		DefaultAngle: e.DefaultAngle(),
		Trace:        e.Traced(),
		Ts:           time.Now().Unix(),
	})
	if err != nil {
		logrus.Errorf("failed to publish engine change: %v", err)
	}
}

func Run(configPath string, unixSocketPath string, listenAddress string, allowNonRoot bool) error {
	var err error
	conf, err = config.NewFile(configPath)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to parse config during startup")
	}
	logrus.WithFields(conf.LogrusFields()).Infof("config loaded")

	swapEngine("startup")
	router := setupRoutes()

	// Receive SIGHUP to reload config
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			err := conf.Load()
			if err != nil {
				logrus.Errorf("failed to reload config: %v", err)
				continue
			}
			swapEngine("reload")
			logrus.Infof("config reloaded")
		}
	}()

	// A socket left behind by a crashed daemon would make Listen fail.
	if _, err := os.Stat(unixSocketPath); err == nil {
		logrus.Warnf("removing stale socket %s", unixSocketPath)
		if err := os.Remove(unixSocketPath); err != nil {
			return pkgerrors.Wrapf(err, "failed to remove stale socket %s", unixSocketPath)
		}
	}

	l, err := net.Listen("unix", unixSocketPath)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to listen on %s", unixSocketPath)
	}

	if conf.AllowNonRootAccess() || allowNonRoot {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", unixSocketPath)
		err = os.Chmod(unixSocketPath, 0777)
		if err != nil {
			return pkgerrors.Wrapf(err, "failed to change permissions of %s", unixSocketPath)
		}
	}

	servers := []*http.Server{{Handler: router}}

	// Serve HTTP on unix socket
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := servers[0].Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	if listenAddress == "" {
		listenAddress = conf.ListenAddress()
	}
	if listenAddress != "" {
		tcp := &http.Server{Addr: listenAddress, Handler: router}
		servers = append(servers, tcp)
		go func() {
			logrus.Infof("http server listening on %s", listenAddress)
			if err := tcp.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logrus.Fatal(err)
			}
		}()
	}

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	// Wait for a SIGINT or SIGTERM:
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	logrus.Info("shutting down http servers")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			logrus.Errorf("failed to shutdown http server: %v", err)
		}
	}

	logrus.Info("exiting")
	return nil
}
