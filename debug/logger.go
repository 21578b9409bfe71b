// Package debug sends diagnostic logs about counted sets to a CodeCTRL
// server.
package debug

import (
	"context"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"time"

	textsearch "github.com/STBoyden/text-search-go"
	e "github.com/STBoyden/text-search-go/error"
	h "github.com/STBoyden/text-search-go/hashbag"

	b "github.com/STBoyden/codectrl-go-protobufs/data/backtrace_data"
	l "github.com/STBoyden/codectrl-go-protobufs/data/log"
	logsService "github.com/STBoyden/codectrl-go-protobufs/logs_service"
	"github.com/go-errors/errors"
	grpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	modulePath = "github.com/STBoyden/text-search-go"

	// EnvVar enables LogWhenEnv when set.
	EnvVar = "TEXT_SEARCH_DEBUG"

	defaultHost     = "127.0.0.1"
	defaultPort     = "3002"
	defaultSurround = uint32(3)

	// Number of ranked entries attached to a set log.
	rankedLimit = 10

	sendTimeout = 5 * time.Second
)

type createLogParams struct {
	surround uint32
}

func createLog(message string, params createLogParams) (*l.Log, error) {
	if params.surround == 0 {
		params.surround = defaultSurround
	}

	log := l.Log{
		Uuid:        "",
		Stack:       []*b.BacktraceData{},
		LineNumber:  0,
		FileName:    "",
		CodeSnippet: map[uint32]string{},
		Message:     message,
		MessageType: reflect.TypeOf(message).String(),
		Address:     "",
		Warnings:    []string{},
		Language:    "Go",
	}

	stack, err := getStackTrace()

	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	log.Stack = stack

	if !(len(log.GetStack()) > 0) {
		return &log, nil
	}

	last := log.GetStack()[len(log.GetStack())-1]
	if last != nil {
		log.LineNumber = last.GetLineNumber()
		log.FileName = last.GetFilePath()
		snippet, err := getCodeSnippet(last.GetFilePath(), log.LineNumber, params.surround)

		if err != nil {
			return nil, errors.Wrap(err, 0)
		}

		log.CodeSnippet = snippet
	}

	return &log, nil
}

// createSetLog builds a log describing set: the message is followed by the
// set's rendering, and the highest ranked entries become warnings.
func createSetLog(message string, set *textsearch.CountedSet, params createLogParams) (*l.Log, error) {
	log, err := createLog(fmt.Sprintf("%s\n%s", message, set), params)

	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	log.MessageType = reflect.TypeOf(set).String()
	log.Warnings = rankedLines(set, rankedLimit)

	return log, nil
}

func rankedLines(set *textsearch.CountedSet, limit int) []string {
	entries := set.Entries()

	if len(entries) > limit {
		entries = entries[:limit]
	}

	lines := make([]string, 0, len(entries))

	for _, entry := range entries {
		lines = append(lines, fmt.Sprintf("%d=%d", entry.Key, entry.Count))
	}

	return lines
}

// Optional parameters for the Logger methods.
type LoggerParams struct {
	surround uint32
	host     string
	port     string
}

// Creates a new LoggerParams using the given parameters.
func NewLoggerParams(surround uint32, host string, port string) LoggerParams {
	return LoggerParams{surround: surround, host: host, port: port}
}

// Creates a new, empty LoggerParams.
func NewEmptyLoggerParams() LoggerParams {
	return LoggerParams{}
}

func (p LoggerParams) resolve() (host string, port string, surround uint32) {
	host, port, surround = defaultHost, defaultPort, defaultSurround

	if p.host != "" {
		host = p.host
	}

	if p.port != "" {
		port = p.port
	}

	if p.surround != 0 {
		surround = p.surround
	}

	return host, port, surround
}

func firstParams(params []LoggerParams) LoggerParams {
	if len(params) > 0 {
		return params[0]
	}

	return NewEmptyLoggerParams()
}

// Main Logger struct
type Logger struct{}

// Creates a new Logger.
func NewLogger() Logger {
	return Logger{}
}

type loggerInterface interface {
	Log(message string, params ...LoggerParams) (*logsService.RequestResult, error)
	LogSet(message string, set *textsearch.CountedSet, params ...LoggerParams) (*logsService.RequestResult, error)
	LogIf(message string, condition func(params ...struct{}) bool, params ...LoggerParams) (*logsService.RequestResult, error)
	LogWhenEnv(message string, params ...LoggerParams) (*logsService.RequestResult, error)

	log(log *l.Log, host string, port string) (*logsService.RequestResult, error)
}

var _ loggerInterface = Logger{}

// Sends a log whenever this function is called, assuming the connection is
// valid.
func (logger Logger) Log(message string, params ...LoggerParams) (*logsService.RequestResult, error) {
	host, port, surround := firstParams(params).resolve()

	log, err := createLog(message, createLogParams{surround: surround})

	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	return logger.log(log, host, port)
}

// Sends a log of the ranked contents of set.
func (logger Logger) LogSet(message string, set *textsearch.CountedSet, params ...LoggerParams) (*logsService.RequestResult, error) {
	host, port, surround := firstParams(params).resolve()

	log, err := createSetLog(message, set, createLogParams{surround: surround})

	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	return logger.log(log, host, port)
}

// Only connects and sends if the given `condition` function resolves to true.
func (logger Logger) LogIf(message string, condition func(params ...struct{}) bool, params ...LoggerParams) (*logsService.RequestResult, error) {
	if !condition() {
		return nil, errors.Wrap(e.New(e.ConditionError, "condition was not true"), 0)
	}

	return logger.Log(message, params...)
}

// Only connects and sends when the TEXT_SEARCH_DEBUG environment variable is
// set.
func (logger Logger) LogWhenEnv(message string, params ...LoggerParams) (*logsService.RequestResult, error) {
	if _, present := os.LookupEnv(EnvVar); !present {
		return nil, errors.Wrap(e.New(e.EnvError, EnvVar+" not set"), 0)
	}

	return logger.Log(message, params...)
}

func (logger Logger) log(log *l.Log, host string, port string) (*logsService.RequestResult, error) {
	connection, err := grpc.Dial(fmt.Sprintf("%s:%s", host, port), grpc.WithTransportCredentials(insecure.NewCredentials()))

	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	defer connection.Close()

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	client := logsService.NewLogClientClient(connection)

	result, err := client.SendLog(ctx, log)

	if err != nil {
		return nil, errors.Wrap(e.New(e.LoggerError, err.Error()), 0)
	}

	return result, nil
}

// Collects the caller's stack, outermost frame first, skipping runtime,
// testing and this module's own frames. Frames repeating a file and line are
// dropped.
func getStackTrace() ([]*b.BacktraceData, error) {
	fakeError := errors.Wrap("fake error", 0)
	stack := fakeError.StackFrames()
	bstack := []*b.BacktraceData{}
	seen := h.New[string]()

	for _, frame := range stack {
		if skipFrame(frame) {
			continue
		}

		code, err := frame.SourceLine()

		if err != nil {
			codeResult, err := getCode(frame.File, uint32(frame.LineNumber))

			if err != nil {
				return nil, errors.Wrap(err, 0)
			}

			code = codeResult
		}

		if h.Insert(seen, fmt.Sprintf("%s:%d", frame.File, frame.LineNumber)) > 1 {
			continue
		}

		bstack = append(
			[]*b.BacktraceData{
				{
					LineNumber:   uint32(frame.LineNumber),
					ColumnNumber: uint32(0),
					FilePath:     frame.File,
					Name:         frame.Name,
					Code:         code,
				},
			},
			bstack...)
	}

	return bstack, nil
}

func skipFrame(frame errors.StackFrame) bool {
	switch frame.Package {
	case "runtime", "testing":
		return true
	default:
	}

	if strings.HasPrefix(frame.Package, modulePath) {
		return true
	}

	goroot := os.Getenv("GOROOT")

	return goroot != "" && strings.Contains(frame.File, goroot)
}

func readLines(filePath string) ([]string, error) {
	file, err := os.Open(filePath)

	if err != nil {
		return nil, errors.Wrap(e.New(e.IoError, err.Error()), 0)
	}

	defer file.Close()

	contentBytes, err := io.ReadAll(file)

	if err != nil {
		return nil, errors.Wrap(e.New(e.IoError, err.Error()), 0)
	}

	return strings.Split(string(contentBytes), "\n"), nil
}

func getCode(filePath string, lineNumber uint32) (string, error) {
	lines, err := readLines(filePath)

	if err != nil {
		return "", errors.Wrap(err, 0)
	}

	if len(lines) < int(lineNumber) {
		return "", errors.Wrap(e.New(e.LineNumTooLargeError, "Line number is too large for this file."), 0)
	} else if int(lineNumber) <= 0 {
		return "", errors.Wrap(e.New(e.LineNumZeroError, "Line number is zero or negative."), 0)
	}

	return lines[lineNumber-1], nil
}

// Returns the lines within surround lines of lineNumber, keyed by their
// 1-based line number.
func getCodeSnippet(filePath string, lineNumber uint32, surround uint32) (map[uint32]string, error) {
	lines, err := readLines(filePath)

	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	first := int(lineNumber) - int(surround)
	if first < 1 {
		first = 1
	}

	last := int(lineNumber) + int(surround)
	if last > len(lines) {
		last = len(lines)
	}

	snippet := map[uint32]string{}

	for number := first; number <= last; number++ {
		snippet[uint32(number)] = lines[number-1]
	}

	return snippet, nil
}
