package debug

import (
	"context"
	"net"
	"sync"
	"testing"

	textsearch "github.com/STBoyden/text-search-go"
	e "github.com/STBoyden/text-search-go/error"

	l "github.com/STBoyden/codectrl-go-protobufs/data/log"
	logsService "github.com/STBoyden/codectrl-go-protobufs/logs_service"
	"github.com/stretchr/testify/require"
	grpc "google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
)

type fakeLogServer struct {
	logsService.UnimplementedLogClientServer

	mu     sync.Mutex
	logs   []*l.Log
	result *logsService.RequestResult
}

func (s *fakeLogServer) SendLog(ctx context.Context, log *l.Log) (*logsService.RequestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs = append(s.logs, log)

	return s.result, nil
}

func (s *fakeLogServer) received() []*l.Log {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]*l.Log(nil), s.logs...)
}

// startServer serves fake on a loopback port and returns the params pointing
// at it together with a function stopping the server.
func startServer(t *testing.T, fake *fakeLogServer) (LoggerParams, func()) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := grpc.NewServer()
	logsService.RegisterLogClientServer(server, fake)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = server.Serve(listener)
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			server.Stop()
			<-done
		})
	}
	t.Cleanup(stop)

	host, port, err := net.SplitHostPort(listener.Addr().String())
	require.NoError(t, err)

	return NewLoggerParams(0, host, port), stop
}

func TestLogSetSendsRankedSnapshot(t *testing.T) {
	fake := &fakeLogServer{result: &logsService.RequestResult{}}
	params, _ := startServer(t, fake)

	result, err := NewLogger().LogSet("q", textsearch.FromKeys(1, 1, 2), params)

	require.NoError(t, err)
	require.NotNil(t, result)
	require.True(t, proto.Equal(fake.result, result))

	logs := fake.received()
	require.Len(t, logs, 1)
	require.Equal(t, "q\nCountedSet{1:2 2:1}", logs[0].GetMessage())
	require.Equal(t, []string{"1=2", "2=1"}, logs[0].GetWarnings())
	require.Equal(t, "*textsearch.CountedSet", logs[0].GetMessageType())
}

func TestLogSendsMessage(t *testing.T) {
	fake := &fakeLogServer{result: &logsService.RequestResult{}}
	params, _ := startServer(t, fake)

	result, err := NewLogger().Log("plain message", params)

	require.NoError(t, err)
	require.NotNil(t, result)

	logs := fake.received()
	require.Len(t, logs, 1)
	require.Equal(t, "plain message", logs[0].GetMessage())
	require.Equal(t, "Go", logs[0].GetLanguage())
}

func TestLogStoppedServer(t *testing.T) {
	fake := &fakeLogServer{result: &logsService.RequestResult{}}
	params, stop := startServer(t, fake)
	stop()

	result, err := NewLogger().LogSet("q", textsearch.FromKeys(1), params)

	require.Nil(t, result)
	require.True(t, e.IsType(err, e.LoggerError), err)
	require.Empty(t, fake.received())
}
