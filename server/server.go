// Package server implements the long-lived replicvar process: a datagram
// message endpoint that drives a fluent Analysis builder by command, and a
// stream data endpoint that delivers the matrix-shaped inputs those
// commands reference.
package server

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/replicest/replicvar/analysis"
	"github.com/replicest/replicvar/replicate"
	"gonum.org/v1/gonum/mat"
)

// Server owns the two listening endpoints and the Analysis builder they
// mutate. It is not safe for concurrent use: the message loop is the only
// goroutine that touches current, matching the builder's single-threaded
// contract (spec §5).
type Server struct {
	msgAddr  string
	dataAddr string

	msgConn *net.UnixConn
	dataLn  *net.UnixListener

	logger  *log.Logger
	current *analysis.Analysis
}

// New binds the message (datagram) and data (stream) Unix sockets at the
// given paths, removing any stale socket file left over from a previous
// run, and returns a Server ready for Run.
func New(msgAddr, dataAddr string) (*Server, error) {
	_ = os.Remove(msgAddr)
	msgConn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: msgAddr, Net: "unixgram"})
	if err != nil {
		return nil, fmt.Errorf("binding message socket: %w", err)
	}

	_ = os.Remove(dataAddr)
	dataLn, err := net.ListenUnix("unix", &net.UnixAddr{Name: dataAddr, Net: "unix"})
	if err != nil {
		msgConn.Close()
		return nil, fmt.Errorf("binding data socket: %w", err)
	}

	return &Server{
		msgAddr:  msgAddr,
		dataAddr: dataAddr,
		msgConn:  msgConn,
		dataLn:   dataLn,
		logger:   log.New(os.Stderr, "replicvar-server: ", log.LstdFlags),
		current:  analysis.New(),
	}, nil
}

// Close tears down both listeners and removes their socket files.
func (s *Server) Close() error {
	s.msgConn.Close()
	s.dataLn.Close()
	_ = os.Remove(s.msgAddr)
	_ = os.Remove(s.dataAddr)
	return nil
}

// Run services the message endpoint until a "shutdown" command is handled
// or the socket errors (e.g. because Close was called from another
// goroutine), in which case that error is returned.
func (s *Server) Run() error {
	buf := make([]byte, 65536)
	for {
		n, clientAddr, err := s.msgConn.ReadFromUnix(buf)
		if err != nil {
			return err
		}
		message := strings.TrimRight(string(buf[:n]), "\x00 \t\r\n")
		s.logger.Printf("received: %s", message)

		reply, payload, shutdown := s.dispatch(message)
		if reply != "" {
			if _, err := s.msgConn.WriteToUnix([]byte(reply), clientAddr); err != nil {
				return err
			}
		}
		if payload != nil {
			if _, err := s.msgConn.WriteToUnix(payload, clientAddr); err != nil {
				return err
			}
		}
		if shutdown {
			return nil
		}
	}
}

func (s *Server) dispatch(message string) (reply string, payload []byte, shutdown bool) {
	fields := strings.Fields(message)
	if len(fields) == 0 {
		return "", nil, false
	}

	switch fields[0] {
	case "shutdown":
		return "shutting down", nil, true
	case "clear":
		s.current = analysis.New()
		return "cleared", nil, false
	case "data":
		return s.handleData(fields), nil, false
	case "groups":
		return s.handleGroups(fields), nil, false
	case "weights":
		return s.handleWeights(), nil, false
	case "replicate":
		return s.handleReplicateWeights(fields), nil, false
	case "set":
		return s.handleSet(fields), nil, false
	case "mean":
		s.current = s.current.Mean()
		return "set analysis to mean", nil, false
	case "correlation":
		s.current = s.current.Correlation()
		return "set analysis to correlation", nil, false
	case "linear":
		if len(fields) >= 2 && fields[1] == "regression" {
			s.current = s.current.Linreg()
			return "set analysis to linear regression", nil, false
		}
	case "quantiles":
		s.current = s.current.Quantiles()
		return "set analysis to quantiles", nil, false
	case "frequencies":
		s.current = s.current.Frequencies()
		return "set analysis to frequencies", nil, false
	case "with":
		return s.handleWithIntercept(fields), nil, false
	case "quantile":
		return s.handleQuantileType(fields), nil, false
	case "calculate":
		reply, payload := s.handleCalculate()
		return reply, payload, false
	}
	return fmt.Sprintf("error: unrecognized command %q", message), nil, false
}

func (s *Server) acceptBytes() ([]byte, error) {
	conn, err := s.dataLn.Accept()
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return io.ReadAll(conn)
}

func (s *Server) acceptMatrix(cols int) (*mat.Dense, error) {
	raw, err := s.acceptBytes()
	if err != nil {
		return nil, err
	}
	return bytesToMatrix(raw, cols)
}

func (s *Server) acceptVector() ([]float64, error) {
	raw, err := s.acceptBytes()
	if err != nil {
		return nil, err
	}
	return bytesToVector(raw)
}

// handleData implements `data <n_imp> <n_cols>`: accept n_imp stream
// connections, each one imputation's row-major matrix.
func (s *Server) handleData(fields []string) string {
	nImp, nCols, err := parseImpCols(fields)
	if err != nil {
		return "error: " + err.Error()
	}

	xs := make([]*mat.Dense, nImp)
	for i := 0; i < nImp; i++ {
		m, err := s.acceptMatrix(nCols)
		if err != nil {
			return "error: " + err.Error()
		}
		xs[i] = m
	}
	s.current = s.current.ForData(xs...)
	return "received data"
}

// handleGroups implements `groups <n_imp> <n_cols>` identically to data,
// but stores the result as the grouping matrices.
func (s *Server) handleGroups(fields []string) string {
	nImp, nCols, err := parseImpCols(fields)
	if err != nil {
		return "error: " + err.Error()
	}

	gs := make([]*mat.Dense, nImp)
	for i := 0; i < nImp; i++ {
		m, err := s.acceptMatrix(nCols)
		if err != nil {
			return "error: " + err.Error()
		}
		gs[i] = m
	}
	s.current = s.current.GroupBy(gs...)
	return "received groups"
}

func (s *Server) handleWeights() string {
	w, err := s.acceptVector()
	if err != nil {
		return "error: " + err.Error()
	}
	s.current = s.current.SetWeights(w)
	return "received weights"
}

// handleReplicateWeights implements `replicate weights <n_cols>`: one
// stream connection delivers the shared replicate-weight matrix.
func (s *Server) handleReplicateWeights(fields []string) string {
	if len(fields) < 3 || fields[0] != "replicate" || fields[1] != "weights" {
		return "error: malformed replicate weights command"
	}
	cols, err := strconv.Atoi(fields[2])
	if err != nil {
		return "error: " + err.Error()
	}
	m, err := s.acceptMatrix(cols)
	if err != nil {
		return "error: " + err.Error()
	}
	s.current = s.current.WithReplicateWeights(m)
	return "received replicate weights"
}

func (s *Server) handleSet(fields []string) string {
	if len(fields) >= 5 && fields[1] == "variance" && fields[2] == "adjustment" && fields[3] == "factor" {
		alpha, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return "error: " + err.Error()
		}
		s.current = s.current.SetVarianceAdjustmentFactor(alpha)
		return "set variance adjustment factor"
	}
	if len(fields) >= 2 && fields[1] == "quantiles" {
		qs := make([]float64, 0, len(fields)-2)
		for _, raw := range fields[2:] {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return "error: " + err.Error()
			}
			qs = append(qs, v)
		}
		s.current = s.current.SetQuantiles(qs)
		return "set quantiles as requested"
	}
	return fmt.Sprintf("error: unrecognized set command %q", strings.Join(fields, " "))
}

func (s *Server) handleWithIntercept(fields []string) string {
	if len(fields) < 3 || fields[1] != "intercept" {
		return "error: malformed with command"
	}
	val := fields[2] == "true"
	s.current = s.current.WithIntercept(val)
	return fmt.Sprintf("with intercept set to %v", val)
}

func (s *Server) handleQuantileType(fields []string) string {
	if len(fields) < 3 || fields[1] != "type" {
		return "error: malformed quantile type command"
	}
	qt, ok := parseQuantileType(fields[2])
	if !ok {
		return fmt.Sprintf("error: unrecognized quantile type %q", fields[2])
	}
	s.current = s.current.SetQuantileType(qt)
	return fmt.Sprintf("quantile type set to %s", fields[2])
}

func (s *Server) handleCalculate() (string, []byte) {
	result, err := s.current.Calculate()
	if err != nil {
		return fmt.Sprintf("error calculating: %s", err.Error()), nil
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(result); err != nil {
		return fmt.Sprintf("error calculating: %s", err.Error()), nil
	}
	return "calculation complete", buf.Bytes()
}

// DecodeResult is the client-side counterpart of handleCalculate's gob
// payload.
func DecodeResult(payload []byte) (map[string]replicate.ReplicatedEstimates, error) {
	var out map[string]replicate.ReplicatedEstimates
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func parseImpCols(fields []string) (nImp, nCols int, err error) {
	if len(fields) < 3 {
		return 0, 0, fmt.Errorf("expected <command> <n_imp> <n_cols>")
	}
	nImp, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, err
	}
	nCols, err = strconv.Atoi(fields[2])
	if err != nil {
		return 0, 0, err
	}
	return nImp, nCols, nil
}
