package gp2ffb

import (
	"context"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sync"
	"testing"
	"time"
)

func stubCANWheel(t *testing.T, stub CANWheel) func() {
	origCANWheelConnect := canWheelConnect
	canWheelConnect = func(iface string) (CANWheel, error) {
		assert.Equal(t, "vcan0", iface)
		return stub, nil
	}
	return func() {
		canWheelConnect = origCANWheelConnect
	}
}

func TestCANWheelActuator(t *testing.T) {
	stub := createCANWheelStub()
	defer stubCANWheel(t, stub)()

	w := NewCANWheelActuator("vcan0")
	assert.Equal(t, "canwheel", w.Name())

	// nothing to talk to before opening
	assert.Error(t, w.SetForce(100))
	assert.NoError(t, w.Close())

	require.NoError(t, w.Open())
	assert.NoError(t, w.Start())
	assert.NoError(t, w.SetForce(-2500))
	assert.NoError(t, w.SetPeriodic(1200, 50*time.Millisecond))
	assert.NoError(t, w.Stop())

	stub.mu.Lock()
	assert.Equal(t, []bool{true, false}, stub.enabled)
	assert.Equal(t, []int{-2500}, stub.forces)
	assert.Equal(t, []int{1200}, stub.periodic)
	stub.mu.Unlock()
}

func TestCANWheelReenables(t *testing.T) {
	stub := createCANWheelStub()
	defer stubCANWheel(t, stub)()

	w := NewCANWheelActuator("vcan0")
	assert.Error(t, w.Start(), "not connected yet")

	require.NoError(t, w.Open())
	require.NoError(t, w.Close())
	require.NoError(t, w.Open())

	stub.mu.Lock()
	defer stub.mu.Unlock()
	assert.True(t, stub.closed)
	assert.Equal(t, []bool{true, true}, stub.enabled)
}

func TestCANWheelStatus(t *testing.T) {
	stub := createCANWheelStub()
	defer stubCANWheel(t, stub)()

	w := NewCANWheelActuator("vcan0")
	require.NoError(t, w.Open())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		_ = w.Run(ctx)
		wg.Done()
	}()
	<-stub.startChan

	stub.fnChan <- func() {
		stub.callbacks.MotorTemp(41)
	}
	stub.fnChan <- func() {
		stub.callbacks.Fault(3)
	}
	// the stub runs callbacks in order, this one syncs with the last
	stub.fnChan <- func() {}
	assert.Equal(t, WheelStatus{MotorTemp: 41, Fault: 3}, w.Status())

	cancel()
	wg.Wait()
}

func TestRunCANWheel(t *testing.T) {
	defer noDelays()()
	stub := createCANWheelStub()
	defer stubCANWheel(t, stub)()

	w := NewCANWheelActuator("vcan0")
	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		RunCANWheel(ctx, w)
		wg.Done()
	}()
	<-stub.startChan
	assert.NoError(t, w.SetForce(10))

	// a bus error reconnects
	stub.errChan <- errors.New("bus off")
	<-stub.startChan
	assert.NoError(t, w.SetForce(20))

	cancel()
	wg.Wait()
	assert.Error(t, w.SetForce(30), "closed after the context is done")
}
