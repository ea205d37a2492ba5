package glsl

import "github.com/gogpu/glslfront/ir"

var f32Scalar = ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}

// texture lowers texture(sampler, coordinate[, bias]).
func (f *Frontend) texture(ctx *Context, body *ir.Block, name string, args []loweredArg, span Span) (*ir.ExpressionHandle, error) {
	image := args[0].expr
	sampler, ok := ctx.samplers[image]
	if !ok {
		return nil, semanticError(span, "Bad call to %s", name)
	}

	var level ir.SampleLevel = ir.SampleLevelAuto{}
	if len(args) == 3 {
		level = ir.SampleLevelBias{Bias: args[2].expr}
	}
	sample, err := ctx.imageSample(body, image, sampler, args[1], level)
	if err != nil {
		return nil, err
	}
	return &sample, nil
}

// textureLod lowers textureLod(sampler, coordinate, lod).
func (f *Frontend) textureLod(ctx *Context, body *ir.Block, name string, args []loweredArg, span Span) (*ir.ExpressionHandle, error) {
	lodInner, err := ctx.ResolveType(args[2].expr, args[2].span)
	if err != nil {
		return nil, err
	}
	lod := args[2].expr
	if source, ok := lodInner.(ir.ScalarType); ok {
		lod = ctx.conform(body, lod, source, f32Scalar)
	} else {
		lod = ctx.convert(body, lod, f32Scalar)
	}

	image := args[0].expr
	sampler, ok := ctx.samplers[image]
	if !ok {
		return nil, semanticError(span, "Bad call to %s", name)
	}
	sample, err := ctx.imageSample(body, image, sampler, args[1], ir.SampleLevelExact{Level: lod})
	if err != nil {
		return nil, err
	}
	return &sample, nil
}

func (c *Context) imageSample(body *ir.Block, image, sampler ir.ExpressionHandle, coord loweredArg, level ir.SampleLevel) (ir.ExpressionHandle, error) {
	sample := ir.ExprImageSample{Image: image, Sampler: sampler, Coordinate: coord.expr, Level: level}
	inner, err := c.ResolveType(image, coord.span)
	if err != nil {
		return 0, err
	}
	if img, ok := inner.(ir.ImageType); ok && img.Arrayed {
		spatial, index := c.splitArrayedCoordinate(body, img.Dim, coord.expr)
		sample.Coordinate = spatial
		sample.ArrayIndex = &index
	}
	return c.AddExpression(sample, body), nil
}

// textureSize lowers textureSize(sampler[, lod]). The query yields
// unsigned sizes and GLSL returns signed ones.
func (f *Frontend) textureSize(ctx *Context, body *ir.Block, args []loweredArg) (*ir.ExpressionHandle, error) {
	query := ir.ImageQuerySize{}
	if len(args) == 2 {
		level := args[1].expr
		query.Level = &level
	}
	size := ctx.AddExpression(ir.ExprImageQuery{Image: args[0].expr, Query: query}, body)
	size = ctx.convert(body, size, ir.ScalarType{Kind: ir.ScalarSint, Width: 4})
	return &size, nil
}

// texelFetch lowers texelFetch(sampler, coordinate, lod or sample).
func (f *Frontend) texelFetch(ctx *Context, body *ir.Block, name string, args []loweredArg, span Span) (*ir.ExpressionHandle, error) {
	image := args[0].expr
	if _, ok := ctx.samplers[image]; !ok {
		return nil, semanticError(span, "Bad call to %s", name)
	}
	inner, err := ctx.ResolveType(image, args[0].span)
	if err != nil {
		return nil, err
	}
	img, ok := inner.(ir.ImageType)
	if !ok {
		return nil, semanticError(span, "Bad call to %s", name)
	}

	load := ir.ExprImageLoad{Image: image, Coordinate: args[1].expr}
	if img.Arrayed {
		spatial, index := ctx.splitArrayedCoordinate(body, img.Dim, args[1].expr)
		load.Coordinate = spatial
		load.ArrayIndex = &index
	}
	texel := args[2].expr
	if img.Multisampled {
		load.Sample = &texel
	} else {
		load.Level = &texel
	}

	expr := ctx.AddExpression(load, body)
	return &expr, nil
}

// splitArrayedCoordinate separates the spatial part of an arrayed image
// coordinate from its array layer lane.
func (c *Context) splitArrayedCoordinate(body *ir.Block, dim ir.ImageDimension, coord ir.ExpressionHandle) (ir.ExpressionHandle, ir.ExpressionHandle) {
	var spatial ir.ExpressionHandle
	var layer uint32
	switch dim {
	case ir.Dim1D:
		spatial = c.AddExpression(ir.ExprAccessIndex{Base: coord, Index: 0}, body)
		layer = 1
	case ir.Dim2D:
		spatial = c.AddExpression(ir.ExprSwizzle{Size: ir.Vec2, Vector: coord, Pattern: ir.SwizzleXYZW}, body)
		layer = 2
	case ir.Dim3D:
		spatial = c.AddExpression(ir.ExprSwizzle{Size: ir.Vec3, Vector: coord, Pattern: ir.SwizzleXYZW}, body)
		layer = 3
	default:
		spatial = c.AddExpression(ir.ExprSwizzle{Size: ir.Vec3, Vector: coord, Pattern: ir.SwizzleXYZW}, body)
		layer = 2
	}
	index := c.AddExpression(ir.ExprAccessIndex{Base: coord, Index: layer}, body)
	return spatial, index
}
