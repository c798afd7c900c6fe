// Package jsdom runs zoom widgets in the browser. Document adapts the page's
// window, elements and requestAnimationFrame to zoom.Document, and each
// portal slot is a container patched by the DOM applier.
package jsdom
