package barbershopv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "barbershop.v1.AvailabilityService"

type AvailabilityServiceServer interface {
	IsAvailable(context.Context, *IsAvailableRequest) (*IsAvailableResponse, error)
	ListAvailableSlots(context.Context, *ListAvailableSlotsRequest) (*ListAvailableSlotsResponse, error)
	GetGrid(context.Context, *GetGridRequest) (*GetGridResponse, error)
	ToggleBlock(context.Context, *ToggleBlockRequest) (*ToggleBlockResponse, error)
	ListBlockedSlots(context.Context, *ListBlockedSlotsRequest) (*ListBlockedSlotsResponse, error)
	GetSchedules(context.Context, *GetSchedulesRequest) (*GetSchedulesResponse, error)
	UpsertSchedule(context.Context, *UpsertScheduleRequest) (*UpsertScheduleResponse, error)
	Book(context.Context, *BookRequest) (*AppointmentResponse, error)
	CancelAppointment(context.Context, *AppointmentRequest) (*AppointmentResponse, error)
	CompleteAppointment(context.Context, *AppointmentRequest) (*AppointmentResponse, error)
}

// UnimplementedAvailabilityServiceServer can be embedded for forward
// compatibility.
type UnimplementedAvailabilityServiceServer struct{}

func (UnimplementedAvailabilityServiceServer) IsAvailable(context.Context, *IsAvailableRequest) (*IsAvailableResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method IsAvailable not implemented")
}
func (UnimplementedAvailabilityServiceServer) ListAvailableSlots(context.Context, *ListAvailableSlotsRequest) (*ListAvailableSlotsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListAvailableSlots not implemented")
}
func (UnimplementedAvailabilityServiceServer) GetGrid(context.Context, *GetGridRequest) (*GetGridResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetGrid not implemented")
}
func (UnimplementedAvailabilityServiceServer) ToggleBlock(context.Context, *ToggleBlockRequest) (*ToggleBlockResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ToggleBlock not implemented")
}
func (UnimplementedAvailabilityServiceServer) ListBlockedSlots(context.Context, *ListBlockedSlotsRequest) (*ListBlockedSlotsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListBlockedSlots not implemented")
}
func (UnimplementedAvailabilityServiceServer) GetSchedules(context.Context, *GetSchedulesRequest) (*GetSchedulesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetSchedules not implemented")
}
func (UnimplementedAvailabilityServiceServer) UpsertSchedule(context.Context, *UpsertScheduleRequest) (*UpsertScheduleResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpsertSchedule not implemented")
}
func (UnimplementedAvailabilityServiceServer) Book(context.Context, *BookRequest) (*AppointmentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Book not implemented")
}
func (UnimplementedAvailabilityServiceServer) CancelAppointment(context.Context, *AppointmentRequest) (*AppointmentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CancelAppointment not implemented")
}
func (UnimplementedAvailabilityServiceServer) CompleteAppointment(context.Context, *AppointmentRequest) (*AppointmentResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CompleteAppointment not implemented")
}

func RegisterAvailabilityServiceServer(s grpc.ServiceRegistrar, srv AvailabilityServiceServer) {
	s.RegisterService(&AvailabilityService_ServiceDesc, srv)
}

func unary[Req, Resp any](method string, call func(AvailabilityServiceServer, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + ServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AvailabilityServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(AvailabilityServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var AvailabilityService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AvailabilityServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "IsAvailable", Handler: unary("IsAvailable", AvailabilityServiceServer.IsAvailable)},
		{MethodName: "ListAvailableSlots", Handler: unary("ListAvailableSlots", AvailabilityServiceServer.ListAvailableSlots)},
		{MethodName: "GetGrid", Handler: unary("GetGrid", AvailabilityServiceServer.GetGrid)},
		{MethodName: "ToggleBlock", Handler: unary("ToggleBlock", AvailabilityServiceServer.ToggleBlock)},
		{MethodName: "ListBlockedSlots", Handler: unary("ListBlockedSlots", AvailabilityServiceServer.ListBlockedSlots)},
		{MethodName: "GetSchedules", Handler: unary("GetSchedules", AvailabilityServiceServer.GetSchedules)},
		{MethodName: "UpsertSchedule", Handler: unary("UpsertSchedule", AvailabilityServiceServer.UpsertSchedule)},
		{MethodName: "Book", Handler: unary("Book", AvailabilityServiceServer.Book)},
		{MethodName: "CancelAppointment", Handler: unary("CancelAppointment", AvailabilityServiceServer.CancelAppointment)},
		{MethodName: "CompleteAppointment", Handler: unary("CompleteAppointment", AvailabilityServiceServer.CompleteAppointment)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "barbershop/v1/availability.proto",
}

// AvailabilityServiceClient calls the service with the JSON codec.
type AvailabilityServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAvailabilityServiceClient(cc grpc.ClientConnInterface) *AvailabilityServiceClient {
	return &AvailabilityServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AvailabilityServiceClient) IsAvailable(ctx context.Context, in *IsAvailableRequest, opts ...grpc.CallOption) (*IsAvailableResponse, error) {
	return invoke[IsAvailableResponse](ctx, c.cc, "IsAvailable", in, opts)
}

func (c *AvailabilityServiceClient) ListAvailableSlots(ctx context.Context, in *ListAvailableSlotsRequest, opts ...grpc.CallOption) (*ListAvailableSlotsResponse, error) {
	return invoke[ListAvailableSlotsResponse](ctx, c.cc, "ListAvailableSlots", in, opts)
}

func (c *AvailabilityServiceClient) GetGrid(ctx context.Context, in *GetGridRequest, opts ...grpc.CallOption) (*GetGridResponse, error) {
	return invoke[GetGridResponse](ctx, c.cc, "GetGrid", in, opts)
}

func (c *AvailabilityServiceClient) ToggleBlock(ctx context.Context, in *ToggleBlockRequest, opts ...grpc.CallOption) (*ToggleBlockResponse, error) {
	return invoke[ToggleBlockResponse](ctx, c.cc, "ToggleBlock", in, opts)
}

func (c *AvailabilityServiceClient) ListBlockedSlots(ctx context.Context, in *ListBlockedSlotsRequest, opts ...grpc.CallOption) (*ListBlockedSlotsResponse, error) {
	return invoke[ListBlockedSlotsResponse](ctx, c.cc, "ListBlockedSlots", in, opts)
}

func (c *AvailabilityServiceClient) GetSchedules(ctx context.Context, in *GetSchedulesRequest, opts ...grpc.CallOption) (*GetSchedulesResponse, error) {
	return invoke[GetSchedulesResponse](ctx, c.cc, "GetSchedules", in, opts)
}

func (c *AvailabilityServiceClient) UpsertSchedule(ctx context.Context, in *UpsertScheduleRequest, opts ...grpc.CallOption) (*UpsertScheduleResponse, error) {
	return invoke[UpsertScheduleResponse](ctx, c.cc, "UpsertSchedule", in, opts)
}

func (c *AvailabilityServiceClient) Book(ctx context.Context, in *BookRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c.cc, "Book", in, opts)
}

func (c *AvailabilityServiceClient) CancelAppointment(ctx context.Context, in *AppointmentRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c.cc, "CancelAppointment", in, opts)
}

func (c *AvailabilityServiceClient) CompleteAppointment(ctx context.Context, in *AppointmentRequest, opts ...grpc.CallOption) (*AppointmentResponse, error) {
	return invoke[AppointmentResponse](ctx, c.cc, "CompleteAppointment", in, opts)
}
