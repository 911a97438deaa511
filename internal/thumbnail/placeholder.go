package thumbnail

import (
	"image"
	"image/color"
	"image/draw"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	placeholderWidth  = 640
	placeholderHeight = 360
)

// placeholderBackground 占位图背景色 #667eea
var placeholderBackground = color.RGBA{R: 0x66, G: 0x7e, B: 0xea, A: 0xff}

// ComposePlaceholder 为无法抽帧的视频合成占位缩略图
// 纯色背景、居中白色播放三角、底部以文件名为标题
func ComposePlaceholder(originalName string) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, placeholderWidth, placeholderHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: placeholderBackground}, image.Point{}, draw.Src)

	drawPlayGlyph(img, placeholderWidth/2, placeholderHeight/2)
	drawCaption(img, captionFor(originalName))

	return img
}

// captionFor 生成占位图标题，超长时截断
func captionFor(originalName string) string {
	caption := filepath.Base(originalName)
	if caption == "." || caption == "/" {
		caption = "video"
	}
	const maxLen = 48
	if len(caption) > maxLen {
		caption = caption[:maxLen-3] + "..."
	}
	return caption
}

// drawPlayGlyph 绘制居中的实心播放三角
func drawPlayGlyph(img *image.RGBA, cx, cy int) {
	const (
		halfHeight = 40
		width      = 70
	)
	white := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

	// 三角顶点：左上 (cx-w/3, cy-h)，左下 (cx-w/3, cy+h)，右 (cx+2w/3, cy)
	left := cx - width/3
	right := cx + 2*width/3

	for x := left; x <= right; x++ {
		// 随 x 线性收窄的竖直扫描线
		t := float64(right-x) / float64(right-left)
		span := int(t * halfHeight)
		for y := cy - span; y <= cy+span; y++ {
			img.SetRGBA(x, y, white)
		}
	}
}

// drawCaption 在占位图下部居中绘制标题
func drawCaption(img *image.RGBA, caption string) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
	}

	textWidth := drawer.MeasureString(caption).Ceil()
	x := (placeholderWidth - textWidth) / 2
	if x < 8 {
		x = 8
	}
	y := placeholderHeight - 40

	drawer.Dot = fixed.P(x, y)
	drawer.DrawString(caption)
}
