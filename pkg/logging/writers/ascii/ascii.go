// Copyright 2022 CFC4N <cfc4n.cs@gmail.com>. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ascii implements the reference writer plugin: plain or
// tab-separated text, optionally gzip-compressed, with an optional
// meta-data header, or newline-delimited JSON. It is the Go counterpart
// of Zeek's Ascii_Batch writer.
package ascii

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/bobertjmurphy/zeek/internal/domain"
	"github.com/bobertjmurphy/zeek/internal/factory"
	"github.com/bobertjmurphy/zeek/internal/logger"
	"github.com/bobertjmurphy/zeek/pkg/logging"
	"github.com/bobertjmurphy/zeek/pkg/logging/writers"
)

// BackendName is the name this plugin registers itself under.
const BackendName = "ascii"

func init() {
	_ = factory.RegisterBackend(factory.BackendTypeASCII, func(dispatcher domain.EventDispatcher, log *logger.Logger) (logging.BackendRunner, error) {
		return New(dispatcher, log), nil
	})
}

// Backend writes records to a Sink as plain/TSV text or JSON, with
// optional gzip compression and rotation support.
type Backend struct {
	backend *logging.Backend

	sinkFactory *writers.SinkFactory
	log         *logger.Logger

	path       string
	fields     []logging.Field
	leafFields []logging.Field
	fmt        formatter

	sink writers.Sink
	gz   *gzip.Writer
	out  io.Writer
	fname string

	tsv            bool
	includeMeta    bool
	useJSON        bool
	outputToStdout bool

	separator    string
	setSeparator string
	emptyField   string
	unsetField   string
	metaPrefix   string

	gzipLevel         int
	gzipFileExtension string
}

// New constructs the batch-adapted ascii backend.
func New(dispatcher domain.EventDispatcher, log *logger.Logger) logging.BackendRunner {
	impl := &Backend{log: log}
	bb := logging.NewBatchBackend(BackendName, impl, nil, dispatcher, log)
	impl.backend = bb.Backend
	impl.sinkFactory = writers.NewSinkFactory(log)
	return bb
}

func logExt() string {
	if ext := os.Getenv("ZEEK_LOG_SUFFIX"); ext != "" {
		return ext
	}
	return "log"
}

func cfgStr(r *logging.ConfigResolver, key, def string) string {
	if v, ok := r.GetConfigString(key); ok {
		return v
	}
	return def
}

// DoInit resolves the backend's configuration and opens its initial
// output.
func (b *Backend) DoInit(info logging.WriterInfo, fields []logging.Field, resolver *logging.ConfigResolver) error {
	b.path = info.Path
	b.fields = fields
	b.leafFields = logging.Flatten(fields)

	b.tsv = resolver.GetConfigBool("tsv", false)
	b.includeMeta = resolver.GetConfigBool("include_meta", true)
	b.useJSON = resolver.GetConfigBool("use_json", false)
	b.outputToStdout = resolver.GetConfigBool("output_to_stdout", false)

	b.separator = unescape(cfgStr(resolver, "separator", "\t"))
	b.setSeparator = unescape(cfgStr(resolver, "set_separator", ","))
	b.emptyField = cfgStr(resolver, "empty_field", "(empty)")
	b.unsetField = cfgStr(resolver, "unset_field", "-")
	b.metaPrefix = cfgStr(resolver, "meta_prefix", "#")

	b.gzipLevel = resolver.GetConfigInt("gzip_level", 0)
	if b.gzipLevel < 0 || b.gzipLevel > 9 {
		return fmt.Errorf("gzip_level must be between 0 and 9, got %d", b.gzipLevel)
	}
	b.gzipFileExtension = cfgStr(resolver, "gzip_file_extension", "gz")

	if b.useJSON {
		// JSON carries its own field names on every line; a separate
		// meta header would be redundant.
		b.includeMeta = false
		b.fmt = newJSONFormatter(cfgStr(resolver, "json_timestamps", tsEpoch))
	} else {
		b.fmt = newAsciiFormatter(b.separator, b.setSeparator, b.emptyField, b.unsetField)
	}

	return b.openOutput(b.effectivePath())
}

func (b *Backend) effectivePath() string {
	if b.outputToStdout {
		return "/dev/stdout"
	}
	return b.path
}

func (b *Backend) openOutput(path string) error {
	special := writers.IsSpecialPath(path)
	fname := path
	if !special {
		fname = path + "." + logExt()
		if b.gzipLevel > 0 {
			fname += "." + b.gzipFileExtension
		}
	}

	sink, err := b.sinkFactory.CreateSink(fname, nil)
	if err != nil {
		return fmt.Errorf("failed to open sink %q: %w", fname, err)
	}
	b.sink = sink
	b.fname = fname

	if b.gzipLevel > 0 {
		gz, err := gzip.NewWriterLevel(sink, b.gzipLevel)
		if err != nil {
			return fmt.Errorf("failed to create gzip writer: %w", err)
		}
		b.gz = gz
		b.out = gz
	} else {
		b.gz = nil
		b.out = sink
	}

	return b.writeHeader(path)
}

func (b *Backend) writeHeader(path string) error {
	if b.useJSON {
		return nil
	}
	if b.tsv {
		names := make([]string, len(b.leafFields))
		for i, f := range b.leafFields {
			names[i] = f.Name
		}
		_, err := io.WriteString(b.out, strings.Join(names, b.separator)+"\n")
		return err
	}
	if !b.includeMeta {
		return nil
	}

	if _, err := io.WriteString(b.out, b.metaPrefix+"separator "+escapeHeaderValue(b.separator)+"\n"); err != nil {
		return err
	}
	if err := b.headerField("writer", BackendName); err != nil {
		return err
	}
	if err := b.headerField("set_separator", escapeHeaderValue(b.setSeparator)); err != nil {
		return err
	}
	if err := b.headerField("empty_field", escapeHeaderValue(b.emptyField)); err != nil {
		return err
	}
	if err := b.headerField("unset_field", escapeHeaderValue(b.unsetField)); err != nil {
		return err
	}
	if err := b.headerField("path", path); err != nil {
		return err
	}
	if err := b.headerField("open", timestamp(0)); err != nil {
		return err
	}

	names := make([]string, len(b.leafFields))
	types := make([]string, len(b.leafFields))
	for i, f := range b.leafFields {
		names[i] = f.Name
		types[i] = f.Type.String()
	}
	if err := b.headerField("fields", strings.Join(names, b.separator)); err != nil {
		return err
	}
	return b.headerField("types", strings.Join(types, b.separator))
}

func (b *Backend) headerField(key, value string) error {
	_, err := io.WriteString(b.out, b.metaPrefix+key+b.separator+value+"\n")
	return err
}

func timestamp(t float64) string {
	when := time.Now()
	if t != 0 {
		when = time.Unix(int64(t), 0)
	}
	return when.Local().Format("2006-01-02-15-04-05")
}

// DoWriteBatch renders and writes every row, stopping at the first fatal
// I/O error and reporting the remainder of the batch as not written.
func (b *Backend) DoWriteBatch(rows []logging.Record) []logging.WriteErrorInfo {
	if b.out == nil {
		if err := b.openOutput(b.effectivePath()); err != nil {
			return []logging.WriteErrorInfo{{
				Index: 0, Count: len(rows),
				Message: fmt.Sprintf("failed to reopen output: %v", err),
				Fatal:   true,
			}}
		}
	}

	var infos []logging.WriteErrorInfo
	for i, row := range rows {
		leafValues := flattenValues(b.fields, row.Values)
		line, err := b.fmt.Format(b.leafFields, leafValues)
		if err != nil {
			infos = appendNotWritten(infos, i, len(rows), fmt.Sprintf("failed to format record: %v", err), false)
			continue
		}

		if err := b.writeRecordLine(line); err != nil {
			return appendNotWritten(infos, i, len(rows), fmt.Sprintf("failed to write record: %v", err), true)
		}
	}

	if err := b.DoFlush(); err != nil {
		b.log.Error().Err(err).Str("path", b.path).Msg("failed to flush ascii writer")
	}
	return infos
}

func appendNotWritten(infos []logging.WriteErrorInfo, index, total int, msg string, fatal bool) []logging.WriteErrorInfo {
	infos = append(infos, logging.WriteErrorInfo{Index: index, Count: 1, Message: msg, Fatal: fatal})
	if fatal && index+1 < total {
		infos = append(infos, logging.WriteErrorInfo{
			Index:   index + 1,
			Count:   total - index - 1,
			Message: "not written due to previous error",
			Fatal:   false,
		})
	}
	return infos
}

// writeRecordLine hex-escapes a leading meta-prefix byte so a record that
// happens to start with it (e.g. a string field beginning with "#") is
// never mistaken for a header line on re-read.
func (b *Backend) writeRecordLine(line string) error {
	if strings.HasPrefix(line, b.metaPrefix) && len(b.metaPrefix) > 0 {
		line = fmt.Sprintf("\\x%02x%s", b.metaPrefix[0], line[len(b.metaPrefix):])
	}
	_, err := io.WriteString(b.out, line+"\n")
	return err
}

// DoFlush pushes any gzip- or OS-buffered bytes out to the sink.
func (b *Backend) DoFlush() error {
	if b.gz != nil {
		if err := b.gz.Flush(); err != nil {
			return err
		}
	}
	if b.sink != nil {
		return b.sink.Flush()
	}
	return nil
}

// DoFinish writes the closing meta line (if applicable), flushes, and
// closes the output.
func (b *Backend) DoFinish() error {
	if b.includeMeta && !b.tsv && !b.useJSON && b.out != nil {
		if err := b.headerField("close", timestamp(0)); err != nil {
			b.log.Warn().Err(err).Msg("failed to write closing meta line")
		}
	}
	return b.closeOutput()
}

func (b *Backend) closeOutput() error {
	var err error
	if b.gz != nil {
		err = b.gz.Close()
		b.gz = nil
	}
	if b.sink != nil {
		if cerr := b.sink.Close(); cerr != nil && err == nil {
			err = cerr
		}
		b.sink = nil
	}
	b.out = nil
	return err
}

// DoRotate renames the current output file aside and, if open is true,
// reopens a fresh one at the original path. Special destinations
// (stdout, stderr, sockets) are never renamed.
func (b *Backend) DoRotate(rotatedPath string, open, _ bool) error {
	defer b.backend.FinishedRotation()

	if writers.IsSpecialPath(b.path) || b.sink == nil {
		return nil
	}

	fs, ok := b.sink.(*writers.FileSink)
	if !ok {
		if err := b.closeOutput(); err != nil {
			return err
		}
		if open {
			return b.openOutput(b.effectivePath())
		}
		return nil
	}

	newName := rotatedPath + "." + logExt()
	if b.gzipLevel > 0 {
		newName += "." + b.gzipFileExtension
	}
	if b.gz != nil {
		if err := b.gz.Close(); err != nil {
			return fmt.Errorf("failed to close gzip writer before rotation: %w", err)
		}
		b.gz = nil
		b.out = nil
	}

	if err := fs.Rotate(newName, false); err != nil {
		return fmt.Errorf("failed to rotate %s: %w", b.fname, err)
	}
	b.sink = nil
	b.out = nil

	if !open {
		return nil
	}
	return b.openOutput(b.effectivePath())
}

// DoHeartbeat has nothing of its own to do; age-based batch flushing is
// handled by the owning BatchBackend.
func (b *Backend) DoHeartbeat(_, _ float64) error { return nil }

func unescape(s string) string {
	r := strings.NewReplacer("\\t", "\t", "\\n", "\n")
	return r.Replace(s)
}
