// Package logger provides an asynchronous structured logger that ships JSON
// log entries to an Elasticsearch index in batches, or writes them as JSON
// lines when no cluster is available.
package logger

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"
	"github.com/google/uuid"
)

// LogLevel represents the severity level of a log entry
type LogLevel string

const (
	LevelDebug LogLevel = "DEBUG"
	LevelInfo  LogLevel = "INFO"
	LevelWarn  LogLevel = "WARN"
	LevelError LogLevel = "ERROR"
	LevelFatal LogLevel = "FATAL"
)

var levelRank = map[LogLevel]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
	LevelFatal: 4,
}

// ParseLevel maps "debug", "info", "warn", "error" and "fatal" to a LogLevel.
// Unknown names fall back to INFO.
func ParseLevel(s string) LogLevel {
	l := LogLevel(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := levelRank[l]; ok {
		return l
	}
	return LevelInfo
}

// LogEntry represents the complete structure of a log record
type LogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"@timestamp"`
	Level     LogLevel  `json:"level"`
	Message   string    `json:"message"`
	Logger    string    `json:"logger"`

	Service     string `json:"service"`
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Hostname    string `json:"hostname"`
	PID         int    `json:"pid"`

	ExecID string `json:"exec_id"` // Execution ID for tracing across services

	Caller *CallerContext `json:"caller,omitempty"`

	// HTTP request context (populated by the gin middleware)
	HTTP *HTTPContext `json:"http,omitempty"`

	Error *ErrorContext `json:"error,omitempty"`

	Fields map[string]interface{} `json:"fields,omitempty"`

	Performance *PerformanceContext `json:"performance,omitempty"`
}

// CallerContext is the source location of the log call
type CallerContext struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
}

// HTTPContext contains HTTP request/response information
type HTTPContext struct {
	Method       string            `json:"method"`
	Path         string            `json:"path"`
	Route        string            `json:"route,omitempty"`
	Query        string            `json:"query"`
	UserAgent    string            `json:"user_agent"`
	RemoteIP     string            `json:"remote_ip"`
	Headers      map[string]string `json:"headers,omitempty"`
	StatusCode   int               `json:"status_code"`
	ResponseSize int               `json:"response_size"`
	RequestID    string            `json:"request_id"`
	RequestBody  string            `json:"request_body,omitempty"`
	ResponseBody string            `json:"response_body,omitempty"`
}

// ErrorContext contains error information
type ErrorContext struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// PerformanceContext contains timing information
type PerformanceContext struct {
	Duration   time.Duration `json:"duration"`
	DurationMs float64       `json:"duration_ms"`
}

// LogContext holds additional context for WithContext
type LogContext struct {
	HTTP        *HTTPContext
	Error       *ErrorContext
	Performance *PerformanceContext
	Fields      map[string]interface{}
}

// Config holds the logger configuration
type Config struct {
	Service         string
	Version         string
	Environment     string
	IndexName       string        // Index receiving log entries
	FlushInterval   time.Duration // How often pending entries are shipped
	BatchSize       int           // Entries per bulk request
	BufferSize      int           // Channel buffer size
	LogLevel        LogLevel      // Minimum level to process
	EnableCaller    bool
	SensitiveFields []string  // Field names redacted from Fields
	ExecutionID     string    // Process-wide execution ID
	Output          io.Writer // Destination when no cluster is configured (default stdout)
}

// sink persists a batch of entries
type sink interface {
	write(ctx context.Context, batch []LogEntry) error
}

// ElasticsearchLogger is the main logger instance
type ElasticsearchLogger struct {
	config      Config
	logChannel  chan LogEntry
	flushReq    chan chan struct{}
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	closeOnce   sync.Once
	hostname    string
	pid         int
	sensitive   map[string]struct{}
	sink        sink
	fallback    sink
	ExecutionID string
}

// NewLogger creates a logger. With a nil client entries are written as JSON
// lines to config.Output.
func NewLogger(es *elasticsearch.Client, config Config) *ElasticsearchLogger {
	if config.IndexName == "" {
		config.IndexName = "esfilter-logs"
	}
	if config.FlushInterval == 0 {
		config.FlushInterval = 1 * time.Second
	}
	if config.BatchSize == 0 {
		config.BatchSize = 100
	}
	if config.BufferSize == 0 {
		config.BufferSize = 10000
	}
	if config.LogLevel == "" {
		config.LogLevel = LevelInfo
	}
	if config.Output == nil {
		config.Output = os.Stdout
	}

	hostname, _ := os.Hostname()
	ctx, cancel := context.WithCancel(context.Background())

	sensitive := make(map[string]struct{}, len(config.SensitiveFields))
	for _, f := range config.SensitiveFields {
		sensitive[strings.ToLower(f)] = struct{}{}
	}

	fallback := &writerSink{w: config.Output}
	var s sink = fallback
	if es != nil {
		s = &bulkSink{es: es, index: config.IndexName}
	}

	l := &ElasticsearchLogger{
		config:      config,
		logChannel:  make(chan LogEntry, config.BufferSize),
		flushReq:    make(chan chan struct{}),
		ctx:         ctx,
		cancel:      cancel,
		hostname:    hostname,
		pid:         os.Getpid(),
		sensitive:   sensitive,
		sink:        s,
		fallback:    fallback,
		ExecutionID: config.ExecutionID,
	}

	l.wg.Add(1)
	go l.processLogs()

	return l
}

// NewNop returns a logger that discards everything
func NewNop() *ElasticsearchLogger {
	return NewLogger(nil, Config{Output: io.Discard, LogLevel: LevelFatal})
}

// processLogs batches entries and ships them to the sink
func (l *ElasticsearchLogger) processLogs() {
	defer l.wg.Done()

	ticker := time.NewTicker(l.config.FlushInterval)
	defer ticker.Stop()

	batch := make([]LogEntry, 0, l.config.BatchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := l.sink.write(ctx, batch); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to ship %d log entries: %v\n", len(batch), err)
			if l.sink != l.fallback {
				_ = l.fallback.write(ctx, batch)
			}
		}
		batch = batch[:0]
	}

	for {
		select {
		case entry := <-l.logChannel:
			batch = append(batch, entry)
			if len(batch) >= l.config.BatchSize {
				flush()
			}

		case done := <-l.flushReq:
			l.drain(&batch)
			flush()
			close(done)

		case <-ticker.C:
			flush()

		case <-l.ctx.Done():
			l.drain(&batch)
			flush()
			return
		}
	}
}

// drain moves whatever is buffered in the channel into the batch
func (l *ElasticsearchLogger) drain(batch *[]LogEntry) {
	for {
		select {
		case entry := <-l.logChannel:
			*batch = append(*batch, entry)
		default:
			return
		}
	}
}

func (l *ElasticsearchLogger) shouldLog(level LogLevel) bool {
	return levelRank[level] >= levelRank[l.config.LogLevel]
}

func (l *ElasticsearchLogger) createLogEntry(level LogLevel, message string) LogEntry {
	entry := LogEntry{
		ID:          uuid.New().String(),
		Timestamp:   time.Now().UTC(),
		Level:       level,
		Message:     message,
		Logger:      "es-logger",
		Service:     l.config.Service,
		Version:     l.config.Version,
		Environment: l.config.Environment,
		Hostname:    l.hostname,
		PID:         l.pid,
		ExecID:      l.config.ExecutionID,
	}

	if l.config.EnableCaller {
		if pc, file, line, ok := runtime.Caller(2); ok {
			entry.Caller = &CallerContext{File: file, Line: line}
			if fn := runtime.FuncForPC(pc); fn != nil {
				entry.Caller.Function = fn.Name()
			}
		}
	}

	return entry
}

// redact replaces the values of sensitive fields
func (l *ElasticsearchLogger) redact(fields map[string]interface{}) map[string]interface{} {
	if len(fields) == 0 || len(l.sensitive) == 0 {
		return fields
	}
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		if _, ok := l.sensitive[strings.ToLower(k)]; ok {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = v
	}
	return out
}

func (l *ElasticsearchLogger) log(entry LogEntry) {
	if !l.shouldLog(entry.Level) {
		return
	}
	entry.Fields = l.redact(entry.Fields)

	select {
	case l.logChannel <- entry:
	default:
		fmt.Fprintf(os.Stderr, "Logger channel full, dropping log: %s\n", entry.Message)
	}
}

func firstFields(fields []map[string]interface{}) map[string]interface{} {
	if len(fields) > 0 {
		return fields[0]
	}
	return nil
}

func errorContext(err error) *ErrorContext {
	if err == nil {
		return nil
	}
	return &ErrorContext{
		Type:    fmt.Sprintf("%T", err),
		Message: err.Error(),
	}
}

// Debug logs a debug message
func (l *ElasticsearchLogger) Debug(message string, fields ...map[string]interface{}) {
	entry := l.createLogEntry(LevelDebug, message)
	entry.Fields = firstFields(fields)
	l.log(entry)
}

// Info logs an info message
func (l *ElasticsearchLogger) Info(message string, fields ...map[string]interface{}) {
	entry := l.createLogEntry(LevelInfo, message)
	entry.Fields = firstFields(fields)
	l.log(entry)
}

// Warn logs a warning message
func (l *ElasticsearchLogger) Warn(message string, fields ...map[string]interface{}) {
	entry := l.createLogEntry(LevelWarn, message)
	entry.Fields = firstFields(fields)
	l.log(entry)
}

// Error logs an error message
func (l *ElasticsearchLogger) Error(message string, err error, fields ...map[string]interface{}) {
	entry := l.createLogEntry(LevelError, message)
	entry.Error = errorContext(err)
	entry.Fields = firstFields(fields)
	l.log(entry)
}

// Fatal logs a fatal message. It does not exit the process.
func (l *ElasticsearchLogger) Fatal(message string, err error, fields ...map[string]interface{}) {
	entry := l.createLogEntry(LevelFatal, message)
	entry.Error = errorContext(err)
	entry.Fields = firstFields(fields)
	l.log(entry)
}

// WithContext logs with additional context
func (l *ElasticsearchLogger) WithContext(level LogLevel, message string, ctx LogContext) {
	if !l.shouldLog(level) {
		return
	}

	entry := l.createLogEntry(level, message)
	entry.HTTP = ctx.HTTP
	entry.Error = ctx.Error
	entry.Performance = ctx.Performance
	entry.Fields = ctx.Fields

	l.log(entry)
}

// Flush blocks until every entry logged so far has been shipped
func (l *ElasticsearchLogger) Flush() error {
	done := make(chan struct{})
	select {
	case l.flushReq <- done:
		<-done
		return nil
	case <-l.ctx.Done():
		return fmt.Errorf("logger closed")
	}
}

// Close ships pending entries and stops the background goroutine
func (l *ElasticsearchLogger) Close() error {
	l.closeOnce.Do(func() {
		l.cancel()
		l.wg.Wait()
	})
	return nil
}

// writerSink writes one JSON document per line
type writerSink struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *writerSink) write(_ context.Context, batch []LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bw := bufio.NewWriter(s.w)
	enc := json.NewEncoder(bw)
	for _, entry := range batch {
		if err := enc.Encode(entry); err != nil {
			return fmt.Errorf("failed to marshal log entry: %w", err)
		}
	}
	return bw.Flush()
}

// bulkSink indexes entries with a single _bulk request per batch
type bulkSink struct {
	es    *elasticsearch.Client
	index string
}

func (s *bulkSink) write(ctx context.Context, batch []LogEntry) error {
	var body bytes.Buffer
	for _, entry := range batch {
		meta, err := json.Marshal(map[string]interface{}{
			"index": map[string]interface{}{"_id": entry.ID},
		})
		if err != nil {
			return err
		}
		doc, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal log entry: %w", err)
		}
		body.Write(meta)
		body.WriteByte('\n')
		body.Write(doc)
		body.WriteByte('\n')
	}

	req := esapi.BulkRequest{
		Index: s.index,
		Body:  &body,
	}
	res, err := req.Do(ctx, s.es)
	if err != nil {
		return fmt.Errorf("bulk request failed: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		return fmt.Errorf("bulk request failed with status: %s", res.Status())
	}

	var result struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode bulk response: %w", err)
	}
	if result.Errors {
		return fmt.Errorf("bulk request reported item errors")
	}
	return nil
}
