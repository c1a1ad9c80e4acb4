package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"reflect"

	"github.com/rs/zerolog"
	"github.com/zoobzio/latch"
	"github.com/zoobzio/latch/pkg/bolt"
	"github.com/zoobzio/latch/pkg/file"
)

var errUsage = errors.New("usage")

type options struct {
	db       string
	file     string
	key      string
	typ      string
	buffered bool
	required bool
	validate string
	retries  int
	verbose  bool
}

var types = map[string]reflect.Type{
	"string": latch.TypeOf[string](),
	"int":    latch.TypeOf[int](),
	"float":  latch.TypeOf[float64](),
	"bool":   latch.TypeOf[bool](),
}

func parseFlags(args []string, stderr io.Writer) (*options, []string, error) {
	opts := &options{}
	fs := flag.NewFlagSet("latch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.db, "db", "", "path to a bbolt database holding the value")
	fs.StringVar(&opts.file, "file", "", "path to a file holding the value")
	fs.StringVar(&opts.key, "key", "value", "key of the value in the database")
	fs.StringVar(&opts.typ, "type", "string", "value type: string, int, float or bool")
	fs.BoolVar(&opts.buffered, "buffered", false, "buffer changes until commit")
	fs.BoolVar(&opts.required, "required", false, "reject an empty value")
	fs.StringVar(&opts.validate, "validate", "", "validation tag, e.g. 'min=1,max=10'")
	fs.IntVar(&opts.retries, "retries", 1, "attempts per storage read or write")
	fs.BoolVar(&opts.verbose, "v", false, "log state transitions")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if (opts.db == "") == (opts.file == "") {
		return nil, nil, fmt.Errorf("%w: exactly one of -db or -file is required", errUsage)
	}
	if opts.retries < 1 {
		return nil, nil, fmt.Errorf("%w: -retries must be at least 1", errUsage)
	}
	if _, ok := types[opts.typ]; !ok {
		return nil, nil, fmt.Errorf("%w: unknown type %q", errUsage, opts.typ)
	}
	return opts, fs.Args(), nil
}

// run applies the actions in args and returns the exit code.
func run(args []string, stdout io.Writer, logger zerolog.Logger) int {
	opts, actions, err := parseFlags(args, stdout)
	if err != nil {
		logger.Error().Err(err).Msg("invalid arguments")
		return 2
	}
	if !opts.verbose {
		logger = logger.Level(zerolog.InfoLevel)
	}

	typ := types[opts.typ]
	pipeline := []latch.SourceOption{latch.WithRetry(opts.retries)}
	var source latch.Property
	name := opts.key
	if opts.db != "" {
		store, err := bolt.Open(opts.db, bolt.WithPipeline(pipeline...))
		if err != nil {
			logger.Error().Err(err).Msg("failed to open database")
			return 1
		}
		defer store.Close()
		source = store.Property(opts.key, typ)
	} else {
		source = file.New(opts.file, typ, file.WithPipeline(pipeline...))
		name = opts.file
	}

	field, err := newField(name, typ, opts)
	if err != nil {
		logger.Error().Err(err).Msg("invalid arguments")
		return 2
	}
	field.SetPropertyDataSource(source)

	code := 0
	for i := 0; i < len(actions); i++ {
		switch actions[i] {
		case "set":
			if i+1 >= len(actions) {
				logger.Error().Msg("set needs a value")
				return 2
			}
			i++
			v, err := latch.TextConverter{}.Convert(actions[i], typ)
			if err != nil {
				logger.Error().Err(err).Str("value", actions[i]).Msg("invalid value")
				code = 1
				continue
			}
			if err := field.SetValue(v); err != nil {
				logger.Error().Err(err).Str("value", actions[i]).Msg("set failed")
				code = 1
			}
		case "commit":
			if err := field.Commit(); err != nil {
				logger.Error().Err(err).Msg("commit failed")
				code = 1
			}
		case "discard":
			field.Discard()
		case "show":
			show(stdout, field)
		default:
			logger.Error().Str("action", actions[i]).Msg("unknown action")
			return 2
		}
	}
	return code
}

func newField(name string, typ reflect.Type, opts *options) (*latch.Field, error) {
	field := latch.NewField().Named(name).Typed(typ)
	if opts.buffered {
		if err := field.SetWriteThrough(false); err != nil {
			return nil, err
		}
	}
	if opts.required {
		field.SetRequired(true)
		field.SetRequiredError(name + " is required")
	}
	if opts.validate != "" {
		v, err := latch.NewTagValidator(opts.validate, "")
		if err != nil {
			return nil, err
		}
		field.AddValidator(v)
	}
	return field, nil
}

func show(w io.Writer, field *latch.Field) {
	fmt.Fprintf(w, "%s = %s [%s]\n", field.Name(), field.String(), field.State())
	if msg := field.ErrorMessage(); msg != nil {
		fmt.Fprintf(w, "  %s: %s\n", msg.Level(), msg)
	}
}
