package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.viam.com/rdk/logging"

	autofiducial "github.com/pinhaocheng/AutoFiducialContest"
	headscan "github.com/pinhaocheng/AutoFiducialContest/head_scan"
	"github.com/pinhaocheng/AutoFiducialContest/internal/scanio"
	"github.com/pinhaocheng/AutoFiducialContest/pigoface"
)

func main() {
	meshPath := flag.String("mesh", "", "path to a textured OBJ head scan (overrides -id)")
	scanID := flag.Int("id", -1, "scan ID within the dataset (e.g. 0)")
	dataset := flag.String("dataset", "contest", "dataset name under the data directory")
	dataDir := flag.String("data-dir", "data", "root data directory")
	outPath := flag.String("out", "", "output .mrk.json path (overrides the dataset layout)")
	save := flag.Bool("save", false, "save the fiducials instead of printing them")
	configPath := flag.String("config", "", "path to a JSON options file (optional)")
	cascadeDir := flag.String("cascades", "", "pigo cascade directory (facefinder, puploc, lps/)")
	heuristic := flag.Bool("heuristic", false, "use the geometric placeholder instead of the detector pipeline")
	flag.Parse()

	logger := logging.NewLogger("find-fiducials")

	if *meshPath == "" && *scanID < 0 {
		logger.Fatal("either -mesh or -id is required")
	}

	opts := autofiducial.DefaultOptions()
	if *configPath != "" {
		loaded, err := autofiducial.LoadOptions(*configPath)
		if err != nil {
			logger.Fatal(err)
		}
		opts = *loaded
	}
	if *cascadeDir != "" {
		opts.CascadeDir = *cascadeDir
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	mesh := *meshPath
	if mesh == "" {
		mesh = scanio.MeshPath(*dataDir, *dataset, *scanID)
	}

	logger.Infof("loading mesh %s", mesh)
	m, err := autofiducial.LoadMesh(mesh)
	if err != nil {
		logger.Fatal(err)
	}

	var set *autofiducial.FiducialSet
	if *heuristic {
		set, err = autofiducial.HeuristicFiducials(m.VertexCloud())
		if err != nil {
			logger.Fatal(err)
		}
	} else {
		if opts.CascadeDir == "" {
			logger.Fatal("-cascades (or cascade_dir in -config) is required unless -heuristic is set")
		}
		dense, err := pigoface.New(opts.CascadeDir, nil)
		if err != nil {
			logger.Fatal(err)
		}

		renderer, err := autofiducial.NewMeshRenderer(m, &opts.Render)
		if err != nil {
			logger.Fatal(err)
		}

		// No bundled ear keypoint detector; ear fiducials require an external
		// tragion model plugged in through headscan.EarDetector.
		locator, err := headscan.NewLocator(renderer, dense, nil, &opts.Pipeline, logger)
		if err != nil {
			logger.Fatal(err)
		}

		result, err := locator.Locate(ctx)
		if err != nil {
			logger.Fatal(err)
		}
		set = autofiducial.FiducialsFromResult(result)
	}

	if err := set.SetCoordinateSystem(opts.CoordinateSystem); err != nil {
		logger.Fatal(err)
	}

	if !*save && *outPath == "" {
		set.Print(logger)
		return
	}

	out := *outPath
	if out == "" {
		out, err = scanio.OutputPath(*dataDir, *dataset, *scanID)
		if err != nil {
			logger.Fatal(err)
		}
	}
	if err := set.SaveFile(out); err != nil {
		logger.Fatal(err)
	}
	logger.Infof("saved %d fiducials to %s", len(set.ControlPoints), out)
}
