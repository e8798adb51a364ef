// Command evaluate-fiducials scores a dataset's located fiducials against its
// reference points and reports per-label and per-scan errors.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"go.viam.com/rdk/logging"

	autofiducial "github.com/pinhaocheng/AutoFiducialContest"
	"github.com/pinhaocheng/AutoFiducialContest/internal/scanio"
)

func main() {
	dataset := flag.String("dataset", "contest", "dataset name under the data directory")
	dataDir := flag.String("data-dir", "data", "root data directory")
	first := flag.Int("first", 0, "first scan ID to evaluate")
	last := flag.Int("last", 0, "last scan ID to evaluate (inclusive)")
	flag.Parse()

	logger := logging.NewDebugLogger("evaluate-fiducials")

	if *last < *first {
		logger.Fatal("-last must not be less than -first")
	}

	evaluated := 0
	sum := 0.0
	for id := *first; id <= *last; id++ {
		eval, err := evaluateScan(*dataDir, *dataset, id, logger)
		if errors.Is(err, os.ErrNotExist) {
			logger.Debugf("scan %03d: no output or reference, skipping", id)
			continue
		}
		if err != nil {
			logger.Fatal(err)
		}
		evaluated++
		sum += eval.MeanError()
	}

	if evaluated == 0 {
		logger.Fatal("no scans evaluated")
	}
	logger.Infof("dataset %s: mean error %.3f over %d scans", *dataset, sum/float64(evaluated), evaluated)
}

func evaluateScan(dataDir, dataset string, id int, logger logging.Logger) (*autofiducial.Evaluation, error) {
	outPath, err := scanio.OutputPath(dataDir, dataset, id)
	if err != nil {
		return nil, err
	}
	located, err := autofiducial.LoadFiducials(outPath)
	if err != nil {
		return nil, err
	}
	reference, err := autofiducial.LoadFiducials(scanio.ReferencePath(dataDir, dataset, id))
	if err != nil {
		return nil, err
	}

	eval, err := autofiducial.Evaluate(located, reference)
	if err != nil {
		return nil, fmt.Errorf("scan %03d: %w", id, err)
	}
	logger.Infof("scan %03d:", id)
	eval.Print(logger)
	return eval, nil
}
