// Command lnactl predicts LNA gain and noise figure from the command line
// and publishes trained artifacts to Redis.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	dbRedis "github.com/kailas-cloud/lnaperf/internal/db/redis"
	"github.com/kailas-cloud/lnaperf/internal/domain"
	"github.com/kailas-cloud/lnaperf/internal/domain/artifact"
	"github.com/kailas-cloud/lnaperf/internal/domain/design"
	"github.com/kailas-cloud/lnaperf/internal/domain/prediction"
	logpkg "github.com/kailas-cloud/lnaperf/internal/logger"
	artifactrepo "github.com/kailas-cloud/lnaperf/internal/repository/artifact"
	predictionuc "github.com/kailas-cloud/lnaperf/internal/usecase/prediction"
	"github.com/kailas-cloud/lnaperf/internal/version"
)

// demoDesigns are the reference designs run by -demo.
var demoDesigns = []design.Parameters{
	design.New("GaN", 94, 8, "4stage"),
	design.New("GaAs", 5.8, 1, "3stage"),
	design.New("GaN", 24, 4, "Unknown"),
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	dir          string
	material     string
	frequency    string
	bandwidth    string
	architecture string
	demo         bool
	list         bool
	publishRedis string
	prefix       string
	logLevel     string
	showVersion  bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("lnactl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.dir, "dir", ".", "directory holding the trained artifacts")
	fs.StringVar(&o.material, "material", "", "semiconductor material, e.g. GaN")
	fs.StringVar(&o.frequency, "frequency", "", "operating frequency in GHz")
	fs.StringVar(&o.bandwidth, "bandwidth", "", "bandwidth in GHz")
	fs.StringVar(&o.architecture, "architecture", "", "amplifier architecture, e.g. 4stage")
	fs.BoolVar(&o.demo, "demo", false, "predict the reference designs")
	fs.BoolVar(&o.list, "list", false, "print the known materials and architectures")
	fs.StringVar(&o.publishRedis, "publish-redis", "", "copy the artifacts in -dir to this Redis address")
	fs.StringVar(&o.prefix, "prefix", "lnaperf:artifact:", "Redis key prefix used by -publish-redis")
	fs.StringVar(&o.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	fs.BoolVar(&o.showVersion, "version", false, "print the version and exit")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return 2
	}
	if o.showVersion {
		fmt.Fprintf(stdout, "lnactl %s (%s)\n", version.Version, version.Commit)
		return 0
	}

	logger, err := logpkg.NewLogger("local", logpkg.WithLevel(o.logLevel))
	if err != nil {
		fmt.Fprintf(stderr, "create logger: %v\n", err)
		return 2
	}
	defer func() { _ = logger.Sync() }()

	source := artifactrepo.NewFileSource(o.dir)
	names := artifactrepo.DefaultNames()

	if o.publishRedis != "" {
		return publish(ctx, o, source, names, stdout, stderr, logger)
	}

	store, err := artifactrepo.NewLoader(source, names, logger).Load(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading a required artifact: %v\n", err)
		return 1
	}

	switch {
	case o.list:
		printKnown(stdout, store)
		return 0
	case o.demo:
		fmt.Fprintln(stdout, "LNA Performance Prediction Application")
		fmt.Fprintln(stdout, strings.Repeat("=", 40))
		for _, p := range demoDesigns {
			predictAndReport(p, store, stdout, stderr)
		}
		return 0
	}

	p, err := design.Parse(o.material, o.frequency, o.bandwidth, o.architecture)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: %v\n", err)
		return 1
	}
	if !predictAndReport(p, store, stdout, stderr) {
		return 1
	}
	return 0
}

func publish(
	ctx context.Context, o options, source artifactrepo.Source, names artifactrepo.Names,
	stdout, stderr io.Writer, logger *zap.Logger,
) int {
	rs, err := dbRedis.NewStore(dbRedis.Config{Addrs: []string{o.publishRedis}})
	if err != nil {
		fmt.Fprintf(stderr, "connect to redis: %v\n", err)
		return 1
	}
	defer rs.Close()

	if err := rs.WaitForReady(ctx, 10*time.Second); err != nil {
		fmt.Fprintf(stderr, "redis not ready: %v\n", err)
		return 1
	}

	fp, err := artifactrepo.Publish(ctx, source, rs, o.prefix, names, logger)
	if err != nil {
		fmt.Fprintf(stderr, "publish: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "Published artifacts %s to %s under %q\n", fp, o.publishRedis, o.prefix)
	return 0
}

func printKnown(w io.Writer, store *artifact.Store) {
	svc := predictionuc.New(artifactrepo.NewStatic(store), nil)
	materials, _ := svc.KnownMaterials(context.Background())
	fmt.Fprintf(w, "Materials:     %s\n", strings.Join(materials, ", "))
	fmt.Fprintf(w, "Architectures: %s\n", strings.Join(svc.KnownArchitectures(), ", "))
}

// predictAndReport prints the design report or a warning. Reports success.
func predictAndReport(p design.Parameters, store *artifact.Store, stdout, stderr io.Writer) bool {
	res, err := predictionuc.Predict(p, store)
	if err != nil {
		printFailure(stderr, err)
		return false
	}
	printReport(stdout, p, store, res)
	return true
}

func printFailure(w io.Writer, err error) {
	var um *domain.UnknownMaterialError
	switch {
	case errors.As(err, &um):
		fmt.Fprintf(w, "Warning: Material '%s' not recognized. Known materials are [%s].\n",
			um.Given, strings.Join(um.Known, " "))
	default:
		fmt.Fprintf(w, "Warning: %v\n", err)
	}
}

func printReport(w io.Writer, p design.Parameters, store *artifact.Store, res prediction.Result) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "---------------------------------")
	fmt.Fprintln(w, "--- LNA Design Parameters ---")
	fmt.Fprintf(w, "  Material:     %s\n", store.Encoder().Normalize(p.Material()))
	fmt.Fprintf(w, "  Frequency:    %s GHz\n", design.FormatFloat(p.FrequencyGHz()))
	fmt.Fprintf(w, "  Bandwidth:    %s GHz\n", design.FormatFloat(p.BandwidthGHz()))
	fmt.Fprintf(w, "  Architecture: %s\n", p.Architecture())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "--- Predicted Performance ---")
	fmt.Fprintf(w, "  Predicted Gain:         %.2f dB\n", res.GainDB())
	fmt.Fprintf(w, "  Predicted Noise Figure: %.2f dB\n", res.NoiseDB())
	fmt.Fprintln(w, "---------------------------------")
}
