// Command foodgramctl runs operator tasks: migrations, reference-data import and health probes.
package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/and161185/foodgram/internal/config"
	"github.com/and161185/foodgram/internal/migrate"
	"github.com/and161185/foodgram/internal/repository/postgres"
	grpcserver "github.com/and161185/foodgram/internal/server/grpc"
	"github.com/and161185/foodgram/internal/service"
)

// ---- grpc ----

type bearerCreds struct {
	token  string
	secure bool
}

func (b bearerCreds) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	return map[string]string{"authorization": "Bearer " + b.token}, nil
}
func (b bearerCreds) RequireTransportSecurity() bool { return b.secure }

func loadTLS(caPath string, insecure bool) (credentials.TransportCredentials, error) {
	if insecure {
		return credentials.NewTLS(&tls.Config{InsecureSkipVerify: true}), nil
	}
	if caPath == "" {
		return credentials.NewClientTLSFromCert(nil, ""), nil
	}
	pem, err := os.ReadFile(caPath)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.New("bad CA cert")
	}
	return credentials.NewTLS(&tls.Config{RootCAs: pool}), nil
}

func plainCreds() credentials.TransportCredentials { return insecure.NewCredentials() }

// checkHealth asks the health service about svc and returns the serving status name.
func checkHealth(ctx context.Context, cc grpc.ClientConnInterface, svc string) (string, error) {
	resp, err := healthpb.NewHealthClient(cc).Check(ctx, &healthpb.HealthCheckRequest{Service: svc})
	if err != nil {
		return "", err
	}
	return resp.GetStatus().String(), nil
}

// ---- import ----

// importFunc loads one reference file and reports how many rows were new.
type importFunc func(ctx context.Context, r io.Reader) (added, read int, err error)

func openInput(p string) (io.ReadCloser, error) {
	if p == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(p)
}

func runImport(ctx context.Context, fn importFunc, path string, w io.Writer) error {
	if path == "" {
		return errors.New("need -file")
	}
	in, err := openInput(path)
	if err != nil {
		return err
	}
	defer in.Close()

	added, read, err := fn(ctx, in)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return printJSON(w, map[string]int{"read": read, "added": added, "skipped": read - added})
}

// ---- utils ----

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// dsnFrom prefers an explicit -dsn and falls back to the server configuration.
func dsnFrom(dsn, cfgPath string) (string, error) {
	if dsn != "" {
		return dsn, nil
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return "", err
	}
	return cfg.Database.DSN, nil
}

func fail(err error) {
	if s, ok := status.FromError(err); ok && s.Code() != 0 {
		fmt.Fprintf(os.Stderr, "rpc error: code=%s msg=%s\n", s.Code(), s.Message())
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

func usage() {
	fmt.Fprintf(os.Stderr, `foodgramctl
Usage:
  foodgramctl [-config file | -dsn URL] <cmd> [args]

Commands:
  version
  migrate                                   apply pending migrations
  status                                    print current schema version
  import-ingredients -file <csv|->          name,measurement_unit
  import-tags        -file <csv|->          name,color,slug
  health  -addr HOST:PORT [-cacert file | -insecure | -plaintext] [-token JWT]
`)
	os.Exit(2)
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	// global flags
	cfgPath := flag.String("config", "", "server config (YAML)")
	dsnFlag := flag.String("dsn", "", "PostgreSQL DSN (overrides config)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	switch cmd {

	case "version":
		fmt.Printf("foodgramctl %s (%s)\n", version, buildDate)

	case "migrate":
		dsn, err := dsnFrom(*dsnFlag, *cfgPath)
		if err != nil {
			fail(err)
		}
		if err := migrate.Up(ctx, dsn); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "status":
		dsn, err := dsnFrom(*dsnFlag, *cfgPath)
		if err != nil {
			fail(err)
		}
		v, err := migrate.Status(ctx, dsn)
		if err != nil {
			fail(err)
		}
		_ = printJSON(os.Stdout, map[string]int64{"version": v})

	case "import-ingredients", "import-tags":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		file := fs.String("file", "", "CSV file ('-'=stdin)")
		_ = fs.Parse(flag.Args()[1:])

		dsn, err := dsnFrom(*dsnFlag, *cfgPath)
		if err != nil {
			fail(err)
		}
		logger, _ := zap.NewProduction()
		defer func() { _ = logger.Sync() }()

		if err := migrate.Up(ctx, dsn); err != nil {
			fail(err)
		}
		db, err := postgres.New(ctx, dsn)
		if err != nil {
			fail(err)
		}
		defer db.Close()

		refs := service.NewReferenceService(postgres.NewReferenceRepo(db), logger)
		fn := refs.ImportIngredients
		if cmd == "import-tags" {
			fn = refs.ImportTags
		}
		if err := runImport(ctx, fn, *file, os.Stdout); err != nil {
			fail(err)
		}

	case "health":
		fs := flag.NewFlagSet("health", flag.ExitOnError)
		addr := fs.String("addr", "localhost:9090", "gRPC addr")
		caPath := fs.String("cacert", "", "CA cert (PEM)")
		insecure := fs.Bool("insecure", false, "skip cert verify (dev)")
		plaintext := fs.Bool("plaintext", false, "no TLS")
		token := fs.String("token", "", "access token (optional)")
		_ = fs.Parse(flag.Args()[1:])

		var opts []grpc.DialOption
		if *plaintext {
			opts = append(opts, grpc.WithTransportCredentials(plainCreds()))
		} else {
			creds, err := loadTLS(*caPath, *insecure)
			if err != nil {
				fail(err)
			}
			opts = append(opts, grpc.WithTransportCredentials(creds))
		}
		if *token != "" {
			opts = append(opts, grpc.WithPerRPCCredentials(bearerCreds{token: *token, secure: !*plaintext}))
		}

		cc, err := grpc.NewClient(*addr, opts...)
		if err != nil {
			fail(err)
		}
		defer cc.Close()

		st, err := checkHealth(ctx, cc, grpcserver.ServiceName)
		if err != nil {
			fail(err)
		}
		fmt.Println(st)
		if st != healthpb.HealthCheckResponse_SERVING.String() {
			os.Exit(1)
		}

	default:
		usage()
	}
}
