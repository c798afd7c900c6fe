package zoom

import "github.com/recera/vango-zoom/pkg/styling"

// styles is the widget stylesheet. The overlay's geometry and backdrop
// color are inline styles written per frame.
var styles = styling.StyleWithRegistry(`
.wrap {
  position: relative;
  display: inline-flex;
  align-items: flex-start;
}
.wrapHidden {
  position: relative;
  display: inline-flex;
  align-items: flex-start;
  visibility: hidden;
}
.trigger {
  position: absolute;
  top: 0;
  right: 0;
  bottom: 0;
  left: 0;
  width: 100%;
  height: 100%;
}
.btn {
  margin: 0;
  padding: 0;
  border: none;
  border-radius: 0;
  background: none;
  box-shadow: none;
  cursor: zoom-in;
  -webkit-appearance: none;
  appearance: none;
}
.overlay {
  position: fixed;
  top: 0;
  right: 0;
  bottom: 0;
  left: 0;
  z-index: 9999;
}
.backdrop {
  position: absolute;
  top: 0;
  right: 0;
  bottom: 0;
  left: 0;
}
.content {
  position: fixed;
  cursor: zoom-out;
  will-change: top, left, width, height;
}
.content > img {
  display: block;
  width: 100%;
  height: 100%;
}
.close {
  position: absolute;
  top: 0;
  right: 0;
  bottom: 0;
  left: 0;
  width: 100%;
  height: 100%;
  cursor: zoom-out;
}
`)

// Class returns the scoped class name used for a widget part, e.g. "wrap".
func Class(name string) string { return styles.Class(name) }
