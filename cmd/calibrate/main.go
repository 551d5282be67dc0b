package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/calebhd03/SPH/config"
)

// formatDuration formats a duration as Hh MMm SSs or Mm SSs for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

// evalLog appends one CSV row per evaluation and tracks the best clamped
// parameter set seen so far.
type evalLog struct {
	w         *csv.Writer
	params    *ParamVector
	evaluator *FitnessEvaluator
	maxEvals  int
	start     time.Time

	count      int
	best       float64
	bestValues []float64
}

func newEvalLog(w *csv.Writer, params *ParamVector, evaluator *FitnessEvaluator, maxEvals int) *evalLog {
	header := []string{"eval", "fitness", "density_err"}
	for _, spec := range params.Specs {
		header = append(header, spec.Name)
	}
	w.Write(header)
	w.Flush()

	return &evalLog{
		w:         w,
		params:    params,
		evaluator: evaluator,
		maxEvals:  maxEvals,
		start:     time.Now(),
		best:      math.Inf(1),
	}
}

// observe records one evaluation at normalized point x.
func (el *evalLog) observe(x []float64, fitness float64) {
	el.count++

	clamped := el.params.Clamp(el.params.Denormalize(x))
	if fitness < el.best {
		el.best = fitness
		el.bestValues = append([]float64(nil), clamped...)
	}

	densityErr := el.evaluator.LastDensityError()
	row := []string{
		strconv.Itoa(el.count),
		fmt.Sprintf("%.6f", fitness),
		fmt.Sprintf("%.6f", densityErr),
	}
	for _, v := range clamped {
		row = append(row, fmt.Sprintf("%.6f", v))
	}
	el.w.Write(row)
	el.w.Flush()

	elapsed := time.Since(el.start)
	eta := time.Duration(el.maxEvals-el.count) * (elapsed / time.Duration(el.count))
	fmt.Printf("Eval %d/%d: density_err=%.4f fitness=%.4f (best=%.4f) | elapsed: %s, ETA: %s\n",
		el.count, el.maxEvals, densityErr, fitness, el.best,
		formatDuration(elapsed), formatDuration(eta))
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	maxSteps := flag.Int("max-steps", 5000, "Solver steps per simulation run")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 100, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	statsWindow := flag.Float64("stats-window", 0.25, "Stats window in sim-seconds")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}
	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	params := NewParamVector()

	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, *maxSteps, evalSeeds, baseCfg, *statsWindow)

	logFile, err := os.Create(filepath.Join(*outputDir, "calibrate_log.csv"))
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()
	logger := newEvalLog(csv.NewWriter(logFile), params, evaluator, *maxEvals)

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			fitness := evaluator.Evaluate(params.Denormalize(x))
			logger.observe(x, fitness)
			return fitness
		},
	}
	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // Seeds already run in parallel inside each evaluation
	}

	// Population size: 4 + floor(3 ln n)
	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*math.Log(float64(params.Dim())))
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}

	fmt.Printf("Starting CMA-ES calibration with %d parameters, population=%d, max_evals=%d\n",
		params.Dim(), popSize, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, steps per run: %d\n", *seeds, *maxSteps)

	// Start from the base config's current values
	initX := params.Normalize(params.ExtractFromConfig(baseCfg))
	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	// The best point may come from any evaluation, not just the final one
	best := logger.bestValues
	if best == nil {
		best = params.Denormalize(result.X)
	}

	fmt.Printf("\nCalibration complete after %d evaluations in %s\n",
		logger.count, formatDuration(time.Since(logger.start)))
	fmt.Printf("Best fitness: %.4f\n", logger.best)
	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Name, best[i])
	}

	saveResults(*outputDir, *configPath, params, best, evaluator)
}

// saveResults writes the winning config and the stats series from its run.
func saveResults(outputDir, configPath string, params *ParamVector, best []float64, evaluator *FitnessEvaluator) {
	bestCfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to reload config: %v", err)
	}
	if err := params.ApplyToConfig(bestCfg, best); err != nil {
		log.Fatalf("failed to apply best parameters: %v", err)
	}

	configOut := filepath.Join(outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOut); err != nil {
		log.Printf("failed to write best config: %v", err)
	} else {
		fmt.Printf("\nBest config saved to: %s\n", configOut)
	}

	windows := evaluator.BestWindows()
	if windows == nil {
		return
	}
	windowsPath := filepath.Join(outputDir, "best_windows.json")
	data, err := json.MarshalIndent(windows, "", "  ")
	if err != nil {
		log.Printf("failed to marshal best windows: %v", err)
		return
	}
	if err := os.WriteFile(windowsPath, data, 0644); err != nil {
		log.Printf("failed to write best windows: %v", err)
		return
	}
	fmt.Printf("Best run stats saved to: %s\n", windowsPath)
}
