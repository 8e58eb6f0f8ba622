package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	gosync "sync"
	"time"

	"clipsync/internal/domain/clipboard"
	"clipsync/internal/domain/device"
	"clipsync/internal/domain/sync"

	"github.com/gorilla/websocket"
)

const (
	watchMinBackoff = time.Second
	watchMaxBackoff = 30 * time.Second
	writeWait       = 10 * time.Second
)

// Event - событие канала реального времени после применения к зеркалу.
type Event struct {
	Name string
	// Item заполнен для clipboard:new и clipboard:update.
	Item *clipboard.Item
	// ItemID заполнен для clipboard:delete.
	ItemID string
	// Duplicate - элемент уже был в зеркале, событие пришло повторно.
	Duplicate bool
	Device    *device.Session
	Message   string
	Data      json.RawMessage
}

// Handler получает события в порядке их прихода.
type Handler func(Event)

// Watch держит соединение реального времени, применяет события к зеркалу и
// передает их handler. Обрывы соединения переживаются с экспоненциальной
// задержкой. Возвращает nil после отмены ctx.
func (a *App) Watch(ctx context.Context, handle Handler) error {
	if err := a.requireAuth(); err != nil {
		return err
	}

	backoff := watchMinBackoff
	for {
		established, err := a.watchOnce(ctx, handle)
		if ctx.Err() != nil {
			return nil
		}
		if IsUnauthorized(err) {
			return err
		}
		if established {
			backoff = watchMinBackoff
		}

		a.log.Warn("Соединение потеряно, переподключение", "error", err, "delay", backoff)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, watchMaxBackoff)
	}
}

type socket struct {
	conn *websocket.Conn
	mu   gosync.Mutex
}

func (s *socket) send(event string, payload any) error {
	frame, err := sync.Encode(event, payload)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, frame)
}

func (a *App) watchOnce(ctx context.Context, handle Handler) (bool, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+a.http.token)
	header.Set("User-Agent", userAgent)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, a.config.SocketURL(), header)
	if err != nil {
		if resp != nil {
			return false, &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return false, fmt.Errorf("ошибка подключения: %w", err)
	}
	defer conn.Close()
	defer a.http.SetConnectionID("")

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	ws := &socket{conn: conn}
	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(a.config.HeartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := ws.send(sync.EventHeartbeat, struct{}{}); err != nil {
					a.log.Debug("Не удалось отправить heartbeat", "error", err)
					return
				}
			}
		}
	}()

	a.log.Info("Соединение установлено", "url", a.config.SocketURL())
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return true, err
		}

		var env sync.Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			a.log.Warn("Некорректный кадр", "error", err)
			continue
		}

		if env.Event == sync.EventSessionReady {
			if err := a.ready(ws, env.Data); err != nil {
				return true, err
			}
		}

		ev, err := a.Apply(ctx, env)
		if err != nil {
			a.log.Warn("Не удалось применить событие", "event", env.Event, "error", err)
			continue
		}
		if handle != nil {
			handle(ev)
		}
	}
}

// ready запоминает ID соединения и регистрирует устройство.
func (a *App) ready(ws *socket, data json.RawMessage) error {
	var ready sync.SessionReady
	if err := json.Unmarshal(data, &ready); err != nil {
		return fmt.Errorf("некорректный session:ready: %w", err)
	}
	a.http.SetConnectionID(ready.ConnectionID)

	return ws.send(sync.EventRegisterDevice, a.descriptor())
}

func (a *App) descriptor() device.Descriptor {
	return device.Descriptor{
		DeviceID:   a.deviceID,
		DeviceName: a.config.DeviceName,
		Platform:   runtime.GOOS,
		Browser:    "cli",
	}
}

// Apply применяет событие сервера к локальному зеркалу. Повторное событие
// clipboard:new помечается как Duplicate и зеркало не меняет.
func (a *App) Apply(ctx context.Context, env sync.Envelope) (Event, error) {
	ev := Event{Name: env.Event, Data: env.Data}

	switch env.Event {
	case sync.EventClipboardNew:
		var item clipboard.Item
		if err := json.Unmarshal(env.Data, &item); err != nil || item.ID == "" {
			// пересланный clipboard:sync без сохранения на сервере
			return ev, nil
		}
		inserted, err := a.mirror.Insert(ctx, item)
		if err != nil {
			return ev, err
		}
		if !inserted {
			gone, err := a.mirror.Deleted(ctx, item.ID)
			if err != nil {
				return ev, err
			}
			if gone {
				// повторная доставка уже удаленного элемента
				ev.ItemID, ev.Duplicate = item.ID, true
				return ev, nil
			}
		}
		ev.Item, ev.Duplicate = &item, !inserted
		if err := a.mirror.SetLastFingerprint(ctx, Fingerprint(item.Type, item.Content)); err != nil {
			return ev, err
		}

	case sync.EventClipboardUpdate:
		var item clipboard.Item
		if err := json.Unmarshal(env.Data, &item); err != nil {
			return ev, fmt.Errorf("некорректный элемент: %w", err)
		}
		if item.ID == "" {
			return ev, errors.New("элемент без id")
		}
		gone, err := a.mirror.Deleted(ctx, item.ID)
		if err != nil {
			return ev, err
		}
		if gone {
			// обновление обогнало удаление: элемент не восстанавливаем
			ev.ItemID = item.ID
			return ev, nil
		}
		if err := a.mirror.Upsert(ctx, item); err != nil {
			return ev, err
		}
		ev.Item = &item

	case sync.EventClipboardDelete:
		var deleted sync.ItemDeleted
		if err := json.Unmarshal(env.Data, &deleted); err != nil {
			return ev, fmt.Errorf("некорректное событие удаления: %w", err)
		}
		if err := a.mirror.Delete(ctx, deleted.ItemID); err != nil {
			return ev, err
		}
		ev.ItemID = deleted.ItemID

	case sync.EventDeviceConnected:
		var payload struct {
			DeviceInfo device.Session `json:"device_info"`
		}
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return ev, fmt.Errorf("некорректное событие устройства: %w", err)
		}
		ev.Device = &payload.DeviceInfo

	case sync.EventDeviceDisconnected:
		var payload sync.DeviceDisconnected
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			return ev, fmt.Errorf("некорректное событие устройства: %w", err)
		}
		ev.Device = &device.Session{DeviceID: payload.DeviceID, DeviceName: payload.DeviceName}

	case sync.EventError:
		var payload sync.ErrorPayload
		if err := json.Unmarshal(env.Data, &payload); err == nil {
			ev.Message = payload.Message
		}
	}

	return ev, nil
}
