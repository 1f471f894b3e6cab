// Package cli contains the landmark command line: serving the HTTP API and running the pipeline on
// a single photo.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"go.viam.com/landmark/config"
	"go.viam.com/landmark/logging"
	"go.viam.com/landmark/services/buildings"
	"go.viam.com/landmark/services/buildings/socrata"
	"go.viam.com/landmark/services/landmark"
	"go.viam.com/landmark/services/vision"
	// registers all classifiers.
	_ "go.viam.com/landmark/services/vision/register"
	rutils "go.viam.com/landmark/utils"
	"go.viam.com/landmark/web"
)

const (
	flagConfig      = "config"
	flagDebug       = "debug"
	flagBindAddress = "bind-address"
	flagImage       = "image"
	flagLat         = "lat"
	flagLon         = "lon"
	flagBearing     = "bearing"
	flagJSON        = "json"
)

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut. Logs go to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "landmark",
		Usage:           "locate the buildings in a photo",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				EnvVars: []string{rutils.ConfigPathEnvVar},
				Usage:   "load configuration from `FILE`, defaults are used when omitted",
			},
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "serve the HTTP API until interrupted",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  flagBindAddress,
						Usage: "override the configured bind address, e.g. `:8080`",
					},
				},
				Action: ServeAction,
			},
			{
				Name:      "locate",
				Usage:     "locate the buildings in a single photo",
				UsageText: "landmark locate --image photo.jpg --lat 40.68 --lon -73.98 --bearing 90",
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:     flagImage,
						Required: true,
						Usage:    "photo to analyze",
					},
					&cli.Float64Flag{
						Name:     flagLat,
						Required: true,
						Usage:    "latitude of the photographer in degrees",
					},
					&cli.Float64Flag{
						Name:     flagLon,
						Required: true,
						Usage:    "longitude of the photographer in degrees",
					},
					&cli.Float64Flag{
						Name:  flagBearing,
						Usage: "direction the camera faces in degrees clockwise from north",
					},
					&cli.BoolFlag{
						Name:  flagJSON,
						Usage: "print the results as JSON instead of a table",
					},
				},
				Action: LocateAction,
			},
		},
	}
}

// env is everything a command needs, built from the config and global flags.
type env struct {
	cfg     *config.Config
	logger  logging.Logger
	service *landmark.Service
	closer  io.Closer
}

func (e *env) Close() error {
	err := e.logger.Sync()
	if e.closer != nil {
		err = multierr.Combine(err, e.closer.Close())
	}
	return err
}

func newEnv(c *cli.Context) (*env, error) {
	logger := logging.NewBlankLogger("landmark")
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter))
	logger.SetLevel(logging.INFO)
	if c.Bool(flagDebug) {
		logger.SetLevel(logging.DEBUG)
	}

	cfg := config.Default()
	if path := c.String(flagConfig); path != "" {
		var err error
		if cfg, err = config.Read(path, logger); err != nil {
			return nil, err
		}
	}

	rt := &env{cfg: cfg, logger: logger}
	if !c.Bool(flagDebug) {
		logger.SetLevel(cfg.Log.Level)
	}
	if cfg.Log.File != "" {
		appender, closer := logging.NewFileAppender(cfg.Log.File)
		logger.AddAppender(appender)
		rt.closer = closer
	}

	classifier, err := vision.NewClassifier(&cfg.Classifier, logger.Sublogger("classifier"))
	if err != nil {
		return nil, multierr.Combine(err, rt.Close())
	}
	registry, err := socrata.NewClient(&cfg.Registry, http.DefaultClient, logger)
	if err != nil {
		return nil, multierr.Combine(err, rt.Close())
	}
	rt.service = landmark.New(
		classifier,
		buildings.NewLocator(registry, cfg.Registry.RangeFeet, logger.Sublogger("buildings")),
		cfg.Tiling,
		vision.OptionsFromConfig(&cfg.Classifier),
		logger.Sublogger("pipeline"),
	)
	logger.Debugw("ready",
		"classifier", cfg.Classifier.Type,
		"grid_pix", cfg.Tiling.GridPix,
		"registry", cfg.Registry.URL)
	return rt, nil
}

// ServeAction serves the HTTP API until SIGINT or SIGTERM.
func ServeAction(c *cli.Context) (err error) {
	rt, err := newEnv(c)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, rt.Close())
	}()

	address := rt.cfg.Network.BindAddress
	if override := c.String(flagBindAddress); override != "" {
		address = override
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	handler := web.NewHandler(rt.service, rt.cfg.Network, rt.logger.Sublogger("web"))
	return web.RunServer(ctx, address, handler, rt.logger)
}

// LocateAction runs the pipeline once on a photo and prints the matches.
func LocateAction(c *cli.Context) (err error) {
	rt, err := newEnv(c)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, rt.Close())
	}()

	image, err := os.ReadFile(c.Path(flagImage))
	if err != nil {
		return errors.Wrap(err, "cannot read image")
	}
	results, err := rt.service.Locate(c.Context, landmark.Request{
		Image:     image,
		Latitude:  c.Float64(flagLat),
		Longitude: c.Float64(flagLon),
		Bearing:   c.Float64(flagBearing),
	})
	if err != nil {
		return err
	}

	if c.Bool(flagJSON) {
		encoder := json.NewEncoder(c.App.Writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(results)
	}
	printResults(c.App.Writer, results)
	return nil
}

func printResults(out io.Writer, results []landmark.Box) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"#", "Box", "Latitude", "Longitude", "Occupancy", "Distance (m)"})
	for i, result := range results {
		t.AppendRow(table.Row{
			i + 1,
			result.Coordinates.String(),
			fmt.Sprintf("%.6f", result.Building.Latitude),
			fmt.Sprintf("%.6f", result.Building.Longitude),
			result.Building.Occupancy,
			fmt.Sprintf("%.1f", result.DistanceMeters),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "Matches", len(results)})
	t.Render()
}
