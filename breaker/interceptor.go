package breaker

import (
	"context"

	"google.golang.org/grpc"

	"github.com/ceyewan/bulwark/metrics"
)

// UnaryClientInterceptor 返回 gRPC 一元调用客户端拦截器
// 为每个 gRPC 调用提供熔断保护
//
// 使用示例:
//
//	brk, _ := breaker.New(cfg, breaker.WithLogger(logger))
//	conn, _ := grpc.NewClient(
//		"localhost:9001",
//		grpc.WithUnaryInterceptor(breaker.UnaryClientInterceptor(brk, meter)),
//	)
func UnaryClientInterceptor(brk Breaker, meter metrics.Meter) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		_, err := brk.Call(ctx, func(ctx context.Context) (any, error) {
			return nil, invoker(ctx, method, req, reply, cc, opts...)
		})

		// 记录方法级别的指标
		recordGRPCRequest(ctx, meter, cc.Target(), method, err)
		return err
	}
}

// StreamClientInterceptor 返回 gRPC 流式调用客户端拦截器
// 熔断保护作用于流的建立，不覆盖流上的后续消息
func StreamClientInterceptor(brk Breaker, meter metrics.Meter) grpc.StreamClientInterceptor {
	return func(ctx context.Context, desc *grpc.StreamDesc, cc *grpc.ClientConn, method string, streamer grpc.Streamer, opts ...grpc.CallOption) (grpc.ClientStream, error) {
		result, err := brk.Call(ctx, func(ctx context.Context) (any, error) {
			return streamer(ctx, desc, cc, method, opts...)
		})

		recordGRPCRequest(ctx, meter, cc.Target(), method, err)
		if err != nil {
			return nil, err
		}
		return result.(grpc.ClientStream), nil
	}
}

// recordGRPCRequest 记录 gRPC 请求指标
func recordGRPCRequest(ctx context.Context, meter metrics.Meter, service, method string, err error) {
	if meter == nil {
		return
	}

	result := "success"
	if err != nil {
		result = "failure"
	}
	if counter, e := meter.Counter(MetricGRPCRequestsTotal, "Total gRPC requests through breaker"); e == nil && counter != nil {
		counter.Inc(ctx,
			metrics.L(LabelService, service),
			metrics.L(LabelMethod, method),
			metrics.L(LabelResult, result))
	}
}
