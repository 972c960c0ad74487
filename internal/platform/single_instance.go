package platform

import (
	"bufio"
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrAlreadyRunning indicates another instance already holds the lock.
var ErrAlreadyRunning = errors.New("instance already running")

const (
	activateCommand = "show"
	requestTimeout  = 2 * time.Second
)

// InstanceGuard holds the single-instance lock and answers activation
// requests from later launches.
type InstanceGuard struct {
	listener net.Listener
	address  string

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// AcquireSingleInstance attempts to bind a deterministic localhost port.
func AcquireSingleInstance(appName string) (*InstanceGuard, error) {
	address := addressFor(appName)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, ErrAlreadyRunning
	}
	return &InstanceGuard{listener: listener, address: address}, nil
}

// ActivateRunning asks the instance holding the lock to show itself.
func ActivateRunning(appName string) error {
	conn, err := net.DialTimeout("tcp", addressFor(appName), requestTimeout)
	if err != nil {
		return fmt.Errorf("contact running instance: %w", err)
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(requestTimeout))
	if _, err := fmt.Fprintln(conn, activateCommand); err != nil {
		return fmt.Errorf("send activate request: %w", err)
	}
	return nil
}

// Serve handles activation requests until Release. onActivate runs on the
// accept goroutine.
func (guard *InstanceGuard) Serve(onActivate func()) {
	if guard == nil || guard.listener == nil {
		return
	}
	guard.wg.Add(1)
	go func() {
		defer guard.wg.Done()
		for {
			conn, err := guard.listener.Accept()
			if err != nil {
				if !errors.Is(err, net.ErrClosed) {
					log.Warn().Err(err).Msg("single instance listener stopped")
				}
				return
			}
			if guard.readCommand(conn) == activateCommand && onActivate != nil {
				onActivate()
			}
		}
	}()
}

// Release frees the single instance lock.
func (guard *InstanceGuard) Release() error {
	if guard == nil || guard.listener == nil {
		return nil
	}
	var err error
	guard.closeOnce.Do(func() {
		err = guard.listener.Close()
		guard.wg.Wait()
	})
	return err
}

// Address returns the bound address.
func (guard *InstanceGuard) Address() string {
	if guard == nil {
		return ""
	}
	return guard.address
}

func (guard *InstanceGuard) readCommand(conn net.Conn) string {
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(requestTimeout))
	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && line == "" {
		log.Debug().Err(err).Msg("ignoring activation request")
		return ""
	}
	return strings.TrimSpace(line)
}

func addressFor(appName string) string {
	return fmt.Sprintf("127.0.0.1:%d", portFromName(appName))
}

func portFromName(appName string) int {
	const (
		minPort = 20000
		maxPort = 39999
	)
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	rangeSize := maxPort - minPort + 1
	return minPort + int(hash.Sum32()%uint32(rangeSize))
}
