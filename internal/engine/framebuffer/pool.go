package framebuffer

import (
	"go.uber.org/zap"

	"github.com/Faultbox/portalcam/internal/portal"
	"github.com/Faultbox/portalcam/internal/rendertarget"
)

// NewPool returns a render target pool backed by GL framebuffers. It must be
// used on the thread that owns the GL context.
func NewPool(log *zap.Logger) *rendertarget.Pool {
	return rendertarget.New(rendertarget.Options{
		Create: func(width, height int) (portal.Texture, error) {
			fb, err := New(width, height)
			if err != nil {
				return nil, err
			}
			return fb, nil
		},
		Destroy: func(t portal.Texture) {
			if fb, ok := t.(*Framebuffer); ok {
				fb.Destroy()
			}
		},
		Logger: log,
	})
}
