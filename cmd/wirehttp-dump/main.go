// Command wirehttp-dump reads one HTTP/1.x message from a file or stdin,
// parses it, and re-serializes it to stdout. It exists to exercise the
// parser and serializer back to back for manual testing; it never opens
// a socket (spec §6 Non-goals).
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/shapestone/wirehttp/errors"
	"github.com/shapestone/wirehttp/header"
	"github.com/shapestone/wirehttp/parser"
	"github.com/shapestone/wirehttp/serializer"
	"github.com/shapestone/wirehttp/wirelog"
)

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if cfg.showVersion {
		fmt.Println(version)
		return
	}

	log := wirelog.Default().With("request_id", uuid.NewString())

	if err := run(cfg, os.Stdin, os.Stdout, log); err != nil {
		log.Err("dump failed", err)
		os.Exit(1)
	}
}

func run(cfg *cliConfig, stdin io.Reader, stdout io.Writer, log *wirelog.Logger) error {
	in := stdin
	if cfg.inputPath != "" {
		f, err := os.Open(cfg.inputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	raw, err := io.ReadAll(in)
	if err != nil {
		return err
	}

	store, body, err := parseMessage(raw, cfg.response)
	if err != nil {
		return err
	}
	log.Info("parsed message", "bytes", len(raw), "body_bytes", len(body), "response", cfg.response)

	return reserialize(store, body, stdout)
}

// parseMessage runs raw through the incremental parser in a single shot,
// accumulating the body into memory via an elastic buffer.
func parseMessage(raw []byte, isResponse bool) (*header.Store, []byte, error) {
	pcfg := parser.DefaultRequestConfig()
	if isResponse {
		pcfg = parser.DefaultResponseConfig()
	}
	p := parser.NewParser(pcfg, isResponse)

	buf, err := p.Prepare(len(raw))
	if err != nil {
		return nil, nil, err
	}
	copy(buf, raw)
	if err := p.Commit(len(raw)); err != nil {
		return nil, nil, err
	}
	p.CommitEOF()

	if err := p.Parse(); err != nil {
		return nil, nil, err
	}

	var body []byte
	p.UseElasticBody(&body)
	if err := p.Parse(); err != nil {
		return nil, nil, err
	}
	if !p.IsComplete() {
		return nil, nil, errors.New(errors.KindIncomplete, "wirehttp-dump.parseMessage", 0)
	}
	return p.Store(), body, nil
}

// reserialize drives a fresh Serializer over store/body and writes every
// produced span to out.
func reserialize(store *header.Store, body []byte, out io.Writer) error {
	sr := serializer.NewSerializer(serializer.DefaultConfig())
	var startErr error
	if len(body) == 0 && store.Metadata().Payload.Kind == header.PayloadNone {
		startErr = sr.StartEmpty(store)
	} else {
		startErr = sr.StartBuffer(store, body)
	}
	if startErr != nil {
		return startErr
	}

	for {
		chunk, err := sr.Prepare()
		if err != nil {
			if k, ok := errors.KindOf(err); ok && k == errors.KindEndOfMessage {
				return nil
			}
			return err
		}
		if _, err := out.Write(chunk); err != nil {
			return err
		}
		if err := sr.Consume(len(chunk)); err != nil {
			return err
		}
	}
}
