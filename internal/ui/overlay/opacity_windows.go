//go:build windows

package overlay

import (
	"syscall"

	"fyne.io/fyne/v2/driver"
	"github.com/rs/zerolog/log"
)

const (
	gwlExStyle  int32 = -20
	wsExLayered       = 0x00080000
	lwaAlpha          = 0x2
)

var (
	user32DLL                      = syscall.NewLazyDLL("user32.dll")
	procGetWindowLongPtrW          = user32DLL.NewProc("GetWindowLongPtrW")
	procSetWindowLongPtrW          = user32DLL.NewProc("SetWindowLongPtrW")
	procSetLayeredWindowAttributes = user32DLL.NewProc("SetLayeredWindowAttributes")
)

// applyNativeOpacity applies Config.Opacity to the whole stage window. An
// opaque stage is left as a normal window.
func (overlay *Window) applyNativeOpacity() {
	alpha := overlay.config.Opacity
	if alpha == 255 {
		return
	}
	nativeWindow, ok := overlay.window.(driver.NativeWindow)
	if !ok {
		return
	}

	nativeWindow.RunNative(func(context any) {
		hwnd := stageHandle(context)
		if hwnd == 0 {
			return
		}
		if err := setLayeredAlpha(hwnd, alpha); err != nil {
			log.Debug().Err(err).Uint8("alpha", alpha).Msg("stage opacity not applied")
		}
	})
}

func stageHandle(context any) uintptr {
	switch value := context.(type) {
	case driver.WindowsWindowContext:
		return value.HWND
	case *driver.WindowsWindowContext:
		return value.HWND
	}
	return 0
}

// setLayeredAlpha marks hwnd as a layered window once and sets its alpha.
func setLayeredAlpha(hwnd uintptr, alpha uint8) error {
	index := gwlExStyle
	exStyle := uintptr(uint32(index))
	style, _, _ := procGetWindowLongPtrW.Call(hwnd, exStyle)
	if style&wsExLayered == 0 {
		procSetWindowLongPtrW.Call(hwnd, exStyle, style|wsExLayered)
	}
	ok, _, err := procSetLayeredWindowAttributes.Call(hwnd, 0, uintptr(alpha), lwaAlpha)
	if ok == 0 {
		return err
	}
	return nil
}
