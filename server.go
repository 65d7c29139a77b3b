package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/tr4cks/picled/led"
	"golang.org/x/sync/errgroup"
)

//go:embed index.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

func newRouter(config *Config, controller *led.Controller, registry *prometheus.Registry, logger zerolog.Logger) (*gin.Engine, error) {
	router := gin.Default()
	if err := router.SetTrustedProxies(nil); err != nil {
		return nil, fmt.Errorf("error configuring trusted proxies: %w", err)
	}
	html := template.Must(template.ParseFS(templateFS, "index.html"))
	router.SetHTMLTemplate(html)

	staticSubtreeFS, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}
	router.StaticFS("/static", http.FS(staticSubtreeFS))

	if registry != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	withLEDState := router.Group("/", AuthMiddleware(config), LEDStateMiddleware(controller))
	{
		// GET index.html
		withLEDState.GET("/", func(c *gin.Context) {
			c.HTML(http.StatusOK, "index.html", gin.H{
				"led":    c.GetBool("led"),
				"status": c.GetString("status"),
				"button": c.GetString("button"),
			})
		})

		// POST index.html
		withLEDState.POST("/", func(c *gin.Context) {
			_, err := controller.Toggle()
			if err != nil {
				logger.Error().Err(err).Msg("LED toggle error")
				c.HTML(http.StatusOK, "index.html", gin.H{
					"led":    c.GetBool("led"),
					"status": c.GetString("status"),
					"button": c.GetString("button"),
					"error":  led.Message(err),
				})
				return
			}

			c.Redirect(http.StatusFound, "/")
		})
	}

	api := router.Group("/api", AuthMiddleware(config))
	{
		api.GET("/state", func(c *gin.Context) {
			c.JSON(http.StatusOK, controller.State().View())
		})

		api.POST("/toggle", func(c *gin.Context) {
			state, err := controller.Toggle()
			if err != nil {
				logger.Error().Err(err).Msg("LED toggle error")
				c.JSON(http.StatusInternalServerError, gin.H{
					"status": "ko",
					"error":  led.Message(err),
				})
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
				"led":    state.On,
			})
		})
	}

	return router, nil
}

// runServer serves the web UI and the API, plus the Discord bot when configured,
// until ctx is cancelled.
func runServer(ctx context.Context, config *Config, controller *led.Controller, logger zerolog.Logger) error {
	listener, err := net.Listen("tcp", config.Addr)
	if err != nil {
		return fmt.Errorf("error listening on %q: %w", config.Addr, err)
	}
	return serve(ctx, listener, config, controller, logger)
}

// serve takes ownership of listener and closes it on return.
func serve(ctx context.Context, listener net.Listener, config *Config, controller *led.Controller, logger zerolog.Logger) error {
	defer listener.Close()

	var registry *prometheus.Registry
	m := newMetrics()
	controller.Subscribe(m.Observe)
	if config.Metrics {
		registry = prometheus.NewRegistry()
		registry.MustRegister(m)
	}

	router, err := newRouter(config, controller, registry, logger)
	if err != nil {
		return err
	}

	var bot *DiscordBot
	if config.Discord != nil {
		bot, err = NewDiscordBot(config.Discord, controller)
		if err != nil {
			return fmt.Errorf("error creating discord bot: %w", err)
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	server := &http.Server{Handler: m.ServerMiddleware(router)}
	g.Go(func() error {
		logger.Info().Str("addr", listener.Addr().String()).Msg("Starting HTTP server")
		err := server.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info().Msg("Stopping HTTP server")
		return server.Shutdown(stopCtx)
	})

	if bot != nil {
		g.Go(func() error {
			if err := bot.Start(); err != nil {
				return err
			}
			<-ctx.Done()
			bot.Stop()
			return nil
		})
	}

	return g.Wait()
}
