// Package mathimg renders LaTeX math to images.
//
// Three renderers implement Renderer:
//
//   - WebTeX builds a URL for a WebTeX service (CodeCogs by default); the
//     editor fetches the image when the HTML is pasted.
//   - Fetcher downloads the image behind another renderer's URL and embeds
//     it as a data: URI.
//   - Browser typesets with KaTeX in headless Chrome via go-rod and embeds a
//     screenshot.
package mathimg
