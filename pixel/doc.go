// Package pixel implements the monochrome frame buffer of page oriented OLED
// controllers.
//
// The image types are compatible with Go's native [color.Color] and
// [image.Image] / [draw.Image] interfaces.
package pixel
